package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"souzaserver/internal/apperr"
	"souzaserver/internal/i18n"
)

// Method はHTTPメソッド
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodPatch   Method = "PATCH"
)

// Methods はサポートするメソッドの一覧
var Methods = []Method{
	MethodGet, MethodHead, MethodPost, MethodPut, MethodDelete,
	MethodConnect, MethodOptions, MethodTrace, MethodPatch,
}

// ParseMethod は文字列をMethodに変換する (大文字小文字を区別する)
func ParseMethod(s string) (Method, bool) {
	for _, m := range Methods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Request はパース済みのHTTPリクエスト
// 構築後は変更しない
type Request struct {
	Method  Method
	Path    string
	Query   string
	Version string
	Headers map[string]string
}

// Header はヘッダーの値を返す
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.Headers[name]
	return v, ok
}

// FullPath はクエリ文字列付きのパスを返す
func (r *Request) FullPath() string {
	if strings.TrimSpace(r.Query) == "" {
		return r.Path
	}
	return r.Path + "?" + r.Query
}

// パーサーのデフォルト値
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultReadTimeout  = 10 * time.Second
)

// Parser は入力ストリームからRequestを組み立てる
type Parser struct {
	PollInterval time.Duration // データ到着を確認する間隔
	Timeout      time.Duration // 最初のデータを待つ上限
}

// NewParser はデフォルト値のParserを作成する
func NewParser() *Parser {
	return &Parser{
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultReadTimeout,
	}
}

// readDeadliner は読み込み期限を設定できる入力
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Parse は r からリクエストを1つ読み込む
// 失敗はすべて *apperr.SystemError で返す
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*Request, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	if conn, ok := r.(readDeadliner); ok {
		defer conn.SetReadDeadline(time.Time{})
	}

	if err := p.waitForData(ctx, r, br); err != nil {
		return nil, err
	}

	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, apperr.NewSystemError(i18n.NewMessage(i18n.KeyErrorReadingRequest), err)
	}
	line = strings.TrimRight(line, "\r\n")

	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, apperr.System(i18n.KeyFirstLineInWrongFormat, line)
	}

	method, ok := ParseMethod(parts[0])
	if !ok {
		return nil, apperr.System(i18n.KeyUnknownMethodInFirstLine, parts[0])
	}

	req := &Request{
		Method:  method,
		Path:    parts[1],
		Version: parts[2],
		Headers: make(map[string]string),
	}
	if i := strings.Index(parts[1], "?"); i >= 0 {
		req.Path = parts[1][:i]
		req.Query = parts[1][i+1:]
	}

	if err := p.readHeaders(r, br, req); err != nil {
		return nil, err
	}
	return req, nil
}

// readHeaders は空行までヘッダーを読む
// 期限を設定できる入力では PollInterval の間データが届かなければ、その時点までのヘッダーで打ち切る
func (p *Parser) readHeaders(r io.Reader, br *bufio.Reader, req *Request) error {
	conn, _ := r.(readDeadliner)
	limit := time.Now().Add(p.Timeout)
	for {
		if conn != nil {
			deadline := time.Now().Add(p.interval())
			if deadline.After(limit) {
				deadline = limit
			}
			if err := conn.SetReadDeadline(deadline); err != nil {
				return apperr.NewSystemError(i18n.NewMessage(i18n.KeyErrorReadingRequest), err)
			}
		}

		line, err := br.ReadString('\n')
		if err != nil {
			var netErr net.Error
			switch {
			case errors.Is(err, io.EOF):
				// 改行のない最後の行もヘッダーとして扱う
				addHeader(req, line)
				return nil
			case errors.As(err, &netErr) && netErr.Timeout():
				// 途中までしか届いていない行は捨てる
				return nil
			default:
				return apperr.NewSystemError(i18n.NewMessage(i18n.KeyErrorReadingRequest), err)
			}
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil
		}
		addHeader(req, line)
	}
}

// addHeader は "名前: 値" の行を登録する (コロンのない行は無視)
func addHeader(req *Request, line string) {
	i := strings.Index(line, ":")
	if i <= 0 {
		return
	}
	req.Headers[line[:i]] = strings.TrimSpace(line[i+1:])
}

func (p *Parser) interval() time.Duration {
	if p.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return p.PollInterval
}

// waitForData は最初のデータが届くまで PollInterval ごとに確認する
// Timeout を超えるかコンテキストがキャンセルされると失敗する
func (p *Parser) waitForData(ctx context.Context, r io.Reader, br *bufio.Reader) error {
	if br.Buffered() > 0 {
		return nil
	}

	conn, ok := r.(readDeadliner)
	if !ok {
		// 期限を設定できない入力はブロックして待つ
		if _, err := br.Peek(1); err != nil {
			return apperr.NewSystemError(i18n.NewMessage(i18n.KeyCouldNotReadFirstLine), err)
		}
		return nil
	}

	interval := p.interval()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return apperr.NewSystemError(i18n.NewMessage(i18n.KeyCouldNotReadFirstLine), ctx.Err())
		default:
		}

		if time.Since(start) >= p.Timeout {
			return apperr.System(i18n.KeyFirstLineTimeout)
		}

		if err := conn.SetReadDeadline(time.Now().Add(interval)); err != nil {
			return apperr.NewSystemError(i18n.NewMessage(i18n.KeyErrorReadingRequest), err)
		}
		_, err := br.Peek(1)
		if err == nil {
			// 残りの読み込みにも上限を設ける
			if err := conn.SetReadDeadline(time.Now().Add(p.Timeout)); err != nil {
				return apperr.NewSystemError(i18n.NewMessage(i18n.KeyErrorReadingRequest), err)
			}
			return nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			continue
		}
		return apperr.NewSystemError(i18n.NewMessage(i18n.KeyCouldNotReadFirstLine), err)
	}
}

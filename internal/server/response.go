package server

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// DefaultReloadWindow は静的ファイルを読み直す最短間隔
const DefaultReloadWindow = time.Second

// HeaderField はレスポンスヘッダーの1行
type HeaderField struct {
	Name  string
	Value string
}

// Response はHTTPレスポンスを組み立てるビルダー
// ヘッダー名は大文字小文字を区別し、追加した順に書き出される
type Response struct {
	status  int
	message string
	headers []HeaderField
	body    []byte

	// 静的ファイルの場合のみ設定される
	file       string
	window     time.Duration
	lastReload time.Time
	mu         sync.Mutex
}

// NewResponse は 200 OK の空のレスポンスを作成する
func NewResponse() *Response {
	r := &Response{status: 200, message: "OK"}
	return r.SetBody(nil)
}

// SetStatus はステータスコードとメッセージを設定する
func (r *Response) SetStatus(code int, message string) *Response {
	r.status = code
	r.message = message
	return r
}

// Status はステータスコードを返す (未設定なら200)
func (r *Response) Status() int {
	if r.status <= 0 {
		return 200
	}
	return r.status
}

// Message はステータスメッセージを返す (未設定なら "OK")
func (r *Response) Message() string {
	if r.message == "" {
		return "OK"
	}
	return r.message
}

// SetHeader はヘッダーを設定する
// 同じ名前があれば位置を保ったまま値を置き換える
func (r *Response) SetHeader(name, value string) *Response {
	for i := range r.headers {
		if r.headers[i].Name == name {
			r.headers[i].Value = value
			return r
		}
	}
	r.headers = append(r.headers, HeaderField{Name: name, Value: value})
	return r
}

// Header はヘッダーの値を返す
func (r *Response) Header(name string) (string, bool) {
	for _, h := range r.headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// Headers はヘッダーのコピーを返す
func (r *Response) Headers() []HeaderField {
	headers := make([]HeaderField, len(r.headers))
	copy(headers, r.headers)
	return headers
}

// SetBody はボディを設定し Content-Length を合わせる
func (r *Response) SetBody(body []byte) *Response {
	if body == nil {
		body = []byte{}
	}
	r.body = body
	return r.SetHeader("Content-Length", strconv.Itoa(len(body)))
}

// Body はボディを返す
func (r *Response) Body() []byte {
	return r.body
}

// File は静的ファイルのパスを返す (静的ファイルでなければ空)
func (r *Response) File() string {
	return r.file
}

// setFile は静的ファイルとして読み直しの対象にする
func (r *Response) setFile(path string, window time.Duration, loadedAt time.Time) *Response {
	r.file = path
	r.window = window
	r.lastReload = loadedAt
	return r
}

// Reload は静的ファイルを必要に応じて読み直す
// 前回から window 以上経過している場合だけ読み込み、読み直したかどうかを返す
func (r *Response) Reload(now time.Time) (bool, error) {
	if r.file == "" {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastReload) < r.window {
		return false, nil
	}
	r.lastReload = now

	data, err := os.ReadFile(r.file)
	if err != nil {
		return false, fmt.Errorf("静的ファイル %s の読み直しに失敗: %w", r.file, err)
	}

	// ボディ、Content-Type、Content-Length はまとめて置き換える
	r.SetStatus(200, "OK")
	r.SetHeader("Content-Type", contentType(r.file, data))
	r.SetBody(data)
	return true, nil
}

// downgrade は読み直しに失敗したレスポンスを500に置き換える
func (r *Response) downgrade(body []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.SetStatus(500, "Internal Server Error")
	r.SetHeader("Content-Type", contentTypeJSON)
	r.SetBody(body)
}

// snapshot は書き出し用のコピーを返す
// 共有されている静的レスポンスを接続ごとに変更しないために使う
func (r *Response) snapshot() *Response {
	r.mu.Lock()
	defer r.mu.Unlock()

	return &Response{
		status:  r.status,
		message: r.message,
		headers: r.Headers(),
		body:    r.body,
	}
}

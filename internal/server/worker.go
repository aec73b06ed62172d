package server

import (
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"

	"souzaserver/internal/apperr"
	"souzaserver/internal/i18n"
	"souzaserver/internal/jsonbody"
)

// worker は1つの接続を最初から最後まで処理する
// パース、ルーティング、書き出しのあと必ず接続を閉じる (keep-aliveなし)
type worker struct {
	srv  *Server
	conn net.Conn
	id   string
}

func newWorker(srv *Server, conn net.Conn) *worker {
	return &worker{
		srv:  srv,
		conn: conn,
		id:   uuid.NewString(),
	}
}

// serve は接続を処理する (workerが接続の所有権を持つ)
func (w *worker) serve() {
	defer w.srv.workers.Done()
	defer w.conn.Close()

	req, err := w.srv.parser.Parse(w.srv.baseCtx, w.conn)
	if err != nil {
		// リクエストが組み立てられていないのでレスポンスは返さない
		w.logf("リクエストの読み込みに失敗: %v", err)
		return
	}

	resp, err := w.handle(req)
	if err != nil {
		resp = w.errorResponse(req, err)
	}

	allowOrigin(req, resp, w.srv.crossDomains)

	if err := writeResponse(w.conn, req.Version, resp, w.srv.now()); err != nil {
		w.logf("レスポンスの書き込みに失敗 %s: %v", req.FullPath(), err)
		return
	}
	w.logf("%s %s %d", req.Method, req.FullPath(), resp.Status())
}

// handle はルーティングを実行する
// ハンドラーのpanicはシステム起因のエラーとして扱う
func (w *worker) handle(req *Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = apperr.NewSystemError(i18n.NewMessage(i18n.KeyUnexpectedFailure), fmt.Errorf("panic: %v", r))
		}
	}()
	return w.srv.route(req)
}

// errorResponse はエラーの種類に応じたレスポンスを作成する
func (w *worker) errorResponse(req *Request, err error) *Response {
	locale := w.srv.locale(req)

	var userErr *apperr.UserError
	if errors.As(err, &userErr) {
		return jsonResponse(400, "Bad Request", jsonbody.Messages(userErr.Localize(w.srv.catalog, locale)))
	}

	var sysErr *apperr.SystemError
	if !errors.As(err, &sysErr) {
		sysErr = apperr.NewSystemError(i18n.NewMessage(i18n.KeyUnexpectedFailure), err)
	}
	w.logf("エラー %s: %v", req.FullPath(), sysErr)
	return jsonResponse(500, "Internal Server Error", jsonbody.Message(w.srv.name(), sysErr.Localize(w.srv.catalog, locale)))
}

func (w *worker) logf(format string, args ...any) {
	w.srv.logger.Printf("[%s] "+format, append([]any{w.id}, args...)...)
}

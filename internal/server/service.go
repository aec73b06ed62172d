package server

import "errors"

// errNotImplemented はBaseServiceのデフォルト実装が返すエラー
// サーバーが 501 Not Implemented に変換する
var errNotImplemented = errors.New("not implemented")

// Service はパスごとのハンドラー
// メソッドごとに1つの操作を持ち、リクエストごとに新しいResponseを返す。
// 失敗は *apperr.UserError か *apperr.SystemError で通知する
type Service interface {
	Get(req *Request) (*Response, error)
	Head(req *Request) (*Response, error)
	Post(req *Request) (*Response, error)
	Put(req *Request) (*Response, error)
	Delete(req *Request) (*Response, error)
	Connect(req *Request) (*Response, error)
	Options(req *Request) (*Response, error)
	Trace(req *Request) (*Response, error)
	Patch(req *Request) (*Response, error)
}

// BaseService は全メソッドが未実装のService
// 埋め込んで必要なメソッドだけを上書きする
//
//	type users struct{ server.BaseService }
//
//	func (users) Get(req *server.Request) (*server.Response, error) { ... }
type BaseService struct{}

func (BaseService) Get(*Request) (*Response, error)     { return nil, errNotImplemented }
func (BaseService) Head(*Request) (*Response, error)    { return nil, errNotImplemented }
func (BaseService) Post(*Request) (*Response, error)    { return nil, errNotImplemented }
func (BaseService) Put(*Request) (*Response, error)     { return nil, errNotImplemented }
func (BaseService) Delete(*Request) (*Response, error)  { return nil, errNotImplemented }
func (BaseService) Connect(*Request) (*Response, error) { return nil, errNotImplemented }
func (BaseService) Options(*Request) (*Response, error) { return nil, errNotImplemented }
func (BaseService) Trace(*Request) (*Response, error)   { return nil, errNotImplemented }
func (BaseService) Patch(*Request) (*Response, error)   { return nil, errNotImplemented }

// operation はメソッドに対応するServiceの操作を返す
func operation(svc Service, m Method) (func(*Request) (*Response, error), bool) {
	switch m {
	case MethodGet:
		return svc.Get, true
	case MethodHead:
		return svc.Head, true
	case MethodPost:
		return svc.Post, true
	case MethodPut:
		return svc.Put, true
	case MethodDelete:
		return svc.Delete, true
	case MethodConnect:
		return svc.Connect, true
	case MethodOptions:
		return svc.Options, true
	case MethodTrace:
		return svc.Trace, true
	case MethodPatch:
		return svc.Patch, true
	default:
		return nil, false
	}
}

package server

import (
	"errors"

	"souzaserver/internal/i18n"
	"souzaserver/internal/jsonbody"
)

// route はリクエストに対するレスポンスを決める
//  1. 静的リソース
//  2. 末尾に "/" を付けると静的リソースになるパスはリダイレクト
//  3. 登録済みのService
//  4. どれにも該当しなければ 404
func (s *Server) route(req *Request) (*Response, error) {
	if resp, ok := s.resources.Get(req.Path); ok {
		return s.static(req, resp), nil
	}

	if _, ok := s.resources.Get(req.Path + "/"); ok {
		return NewResponse().
			SetStatus(302, "Found").
			SetHeader("Location", req.Path+"/"), nil
	}

	if svc, ok := s.services[req.Path]; ok {
		return s.dispatch(svc, req)
	}

	message := s.catalog.Get(s.locale(req), i18n.KeyNotFound, req.Path)
	return jsonResponse(404, "Not Found", jsonbody.Message(s.name(), message)), nil
}

// static は静的レスポンスを必要なら読み直してから書き出し用のコピーを返す
// 読み直しに失敗した場合は共有レスポンス自体を 500 に置き換える
func (s *Server) static(req *Request, resp *Response) *Response {
	if _, err := resp.Reload(s.now()); err != nil {
		s.logger.Printf("エラー %s: %v", req.FullPath(), err)
		message := s.catalog.Get(s.locale(req), i18n.KeyCouldNotReadFile, resp.File())
		resp.downgrade(jsonbody.Message(s.name(), message))
	}
	return resp.snapshot()
}

// dispatch はリクエストのメソッドに対応するServiceの操作を呼び出す
func (s *Server) dispatch(svc Service, req *Request) (*Response, error) {
	op, ok := operation(svc, req.Method)
	if !ok {
		name := string(req.Method)
		if name == "" {
			name = "null"
		}
		message := s.catalog.Get(s.locale(req), i18n.KeyMethodNotAllowed, name)
		return jsonResponse(405, "Method Not Allowed", jsonbody.Message(s.name(), message)), nil
	}

	resp, err := op(req)
	if errors.Is(err, errNotImplemented) {
		message := s.catalog.Get(s.locale(req), i18n.KeyNotImplemented)
		return jsonResponse(501, "Not Implemented", jsonbody.Message(s.name(), message)), nil
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = NewResponse()
	}
	return resp, nil
}

// locale はリクエストのAccept-Languageからロケールを選ぶ
func (s *Server) locale(req *Request) string {
	if req == nil {
		return s.catalog.DefaultLocale()
	}
	return s.catalog.Match(req.Headers["Accept-Language"])
}

// jsonResponse はJSONボディのレスポンスを作成する
func jsonResponse(code int, message string, body []byte) *Response {
	return NewResponse().
		SetStatus(code, message).
		SetHeader("Content-Type", contentTypeJSON).
		SetBody(body)
}

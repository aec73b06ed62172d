package server

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souzaserver/internal/apperr"
	"souzaserver/internal/config"
	"souzaserver/internal/i18n"
)

func newRouterServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Locale = "en"
	srv, err := New(cfg, append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)...)
	require.NoError(t, err)
	return srv
}

// echoService はGETだけを実装したService
type echoService struct {
	BaseService
}

func (echoService) Get(req *Request) (*Response, error) {
	switch req.Query {
	case "nil":
		return nil, nil
	case "user":
		return nil, apperr.User("invalid id")
	case "system":
		return nil, apperr.System(i18n.KeyUnexpectedFailure)
	}
	return NewResponse().
		SetHeader("Content-Type", "text/plain").
		SetBody([]byte("eco " + req.Path)), nil
}

func TestDispatchNotImplemented(t *testing.T) {
	srv := newRouterServer(t)

	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			resp, err := srv.dispatch(BaseService{}, &Request{Method: m, Path: "/servico"})
			require.NoError(t, err)
			assert.Equal(t, 501, resp.Status())
			assert.Equal(t, "Not Implemented", resp.Message())
			assert.JSONEq(t, `{"server":"Souza Server","message":"Not implemented."}`, string(resp.Body()))
		})
	}
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	srv := newRouterServer(t)

	testCases := []struct {
		name   string
		method Method
		want   string
	}{
		{name: "未知のメソッド", method: "BREW", want: "Method BREW not allowed."},
		{name: "メソッドなし", method: "", want: "Method null not allowed."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := srv.dispatch(echoService{}, &Request{Method: tc.method, Path: "/eco"})
			require.NoError(t, err)
			assert.Equal(t, 405, resp.Status())
			assert.Equal(t, "Method Not Allowed", resp.Message())
			assert.JSONEq(t, `{"server":"Souza Server","message":"`+tc.want+`"}`, string(resp.Body()))
		})
	}
}

func TestDispatchOverride(t *testing.T) {
	srv := newRouterServer(t)

	resp, err := srv.dispatch(echoService{}, &Request{Method: MethodGet, Path: "/eco"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, "eco /eco", string(resp.Body()))

	// 上書きしていないメソッドは 501 のまま
	resp, err = srv.dispatch(echoService{}, &Request{Method: MethodPost, Path: "/eco"})
	require.NoError(t, err)
	assert.Equal(t, 501, resp.Status())

	// nilを返した場合は空の 200
	resp, err = srv.dispatch(echoService{}, &Request{Method: MethodGet, Path: "/eco", Query: "nil"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status())
	assert.Empty(t, resp.Body())
}

func TestDispatchErrors(t *testing.T) {
	srv := newRouterServer(t)

	_, err := srv.dispatch(echoService{}, &Request{Method: MethodGet, Path: "/eco", Query: "user"})
	var userErr *apperr.UserError
	assert.True(t, errors.As(err, &userErr))

	_, err = srv.dispatch(echoService{}, &Request{Method: MethodGet, Path: "/eco", Query: "system"})
	var sysErr *apperr.SystemError
	assert.True(t, errors.As(err, &sysErr))
}

func TestRouteNotFound(t *testing.T) {
	srv := newRouterServer(t)

	resp, err := srv.route(&Request{Method: MethodGet, Path: "/servico-inexistente"})
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Status())
	assert.Equal(t, "Not Found", resp.Message())
	assert.JSONEq(t, `{"server":"Souza Server","message":"Resource /servico-inexistente not found."}`, string(resp.Body()))

	// Accept-Language でメッセージの言語が変わる
	resp, err = srv.route(&Request{
		Method:  MethodGet,
		Path:    "/x",
		Headers: map[string]string{"Accept-Language": "pt-BR,pt;q=0.9"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"server":"Souza Server","message":"Recurso /x não encontrado."}`, string(resp.Body()))
}

func TestRoutePrecedence(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, map[string]string{
		"eco":             "arquivo",
		"docs/index.html": "<html>docs</html>",
	})

	srv := newRouterServer(t)
	require.NoError(t, srv.SetStaticResource(base))
	require.NoError(t, srv.AddServicePath("eco", echoService{}))
	require.NoError(t, srv.AddServicePath("/servico", echoService{}))

	t.Run("静的リソースが優先", func(t *testing.T) {
		resp, err := srv.route(&Request{Method: MethodGet, Path: "/eco"})
		require.NoError(t, err)
		assert.Equal(t, "arquivo", string(resp.Body()))
	})

	t.Run("ディレクトリへのリダイレクト", func(t *testing.T) {
		resp, err := srv.route(&Request{Method: MethodGet, Path: "/docs"})
		require.NoError(t, err)
		assert.Equal(t, 302, resp.Status())
		assert.Equal(t, "Found", resp.Message())
		loc, _ := resp.Header("Location")
		assert.Equal(t, "/docs/", loc)
	})

	t.Run("インデックス", func(t *testing.T) {
		resp, err := srv.route(&Request{Method: MethodGet, Path: "/docs/"})
		require.NoError(t, err)
		assert.Equal(t, "<html>docs</html>", string(resp.Body()))
	})

	t.Run("Service", func(t *testing.T) {
		resp, err := srv.route(&Request{Method: MethodGet, Path: "/servico"})
		require.NoError(t, err)
		assert.Equal(t, "eco /servico", string(resp.Body()))
	})
}

func TestRouteStaticIgnoresMethod(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, map[string]string{"a.txt": "a"})

	srv := newRouterServer(t)
	require.NoError(t, srv.SetStaticResource(base))

	for _, m := range []Method{MethodPost, MethodDelete} {
		resp, err := srv.route(&Request{Method: m, Path: "/a.txt"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status())
		assert.Equal(t, "a", string(resp.Body()))
	}
}

func TestRouteStaticReload(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, map[string]string{"dados": "v1"})

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	srv := newRouterServer(t, WithClock(func() time.Time { return now }))
	require.NoError(t, srv.SetStaticResource(base))

	resp, err := srv.route(&Request{Method: MethodGet, Path: "/dados"})
	require.NoError(t, err)
	ct, _ := resp.Header("Content-Type")
	require.Equal(t, "text/plain", ct)

	// 拡張子がないので内容でContent-Typeが変わるファイルに書き換える
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"
	writeFiles(t, base, map[string]string{"dados": png})

	now = now.Add(500 * time.Millisecond)
	resp, err = srv.route(&Request{Method: MethodGet, Path: "/dados"})
	require.NoError(t, err)
	assert.Equal(t, "v1", string(resp.Body()), "1秒以内はキャッシュを返す")
	ct, _ = resp.Header("Content-Type")
	assert.Equal(t, "text/plain", ct, "1秒以内はContent-Typeも変わらない")
	cl, _ := resp.Header("Content-Length")
	assert.Equal(t, "2", cl)

	now = now.Add(2 * time.Second)
	resp, err = srv.route(&Request{Method: MethodGet, Path: "/dados"})
	require.NoError(t, err)
	assert.Equal(t, png, string(resp.Body()))
	ct, _ = resp.Header("Content-Type")
	assert.Equal(t, "image/png", ct)
}

func TestRouteStaticReloadFailure(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, map[string]string{"sumiu.html": "x"})

	now := time.Now()
	srv := newRouterServer(t, WithClock(func() time.Time { return now }))
	require.NoError(t, srv.SetStaticResource(base))

	file := filepath.Join(base, "sumiu.html")
	require.NoError(t, os.Remove(file))
	now = now.Add(2 * time.Second)

	resp, err := srv.route(&Request{Method: MethodGet, Path: "/sumiu.html"})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.Status())
	assert.JSONEq(t, `{"server":"Souza Server","message":"Could not read the file `+file+`."}`, string(resp.Body()))

	// Accept-Language に合わせたメッセージになる
	now = now.Add(2 * time.Second)
	resp, err = srv.route(&Request{
		Method:  MethodGet,
		Path:    "/sumiu.html",
		Headers: map[string]string{"Accept-Language": "pt-BR"},
	})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.Status())
	assert.JSONEq(t, `{"server":"Souza Server","message":"Não foi possível ler o arquivo `+file+`."}`, string(resp.Body()))

	// 共有エントリ自体が置き換わる
	shared, _ := srv.Resources().Get("/sumiu.html")
	assert.Equal(t, 500, shared.Status())
}

func TestAddServicePathNormalizes(t *testing.T) {
	srv := newRouterServer(t)
	require.NoError(t, srv.AddServicePath("api/usuarios", echoService{}))

	_, ok := srv.services["/api/usuarios"]
	assert.True(t, ok)
}

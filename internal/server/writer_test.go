package server

import (
	"bufio"
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResponse(t *testing.T) {
	now := time.Date(2026, 3, 9, 14, 5, 7, 0, time.FixedZone("BRT", -3*60*60))
	resp := NewResponse().
		SetHeader("Content-Type", "text/html").
		SetBody([]byte("<html>...</html>"))

	var buf bytes.Buffer
	require.NoError(t, writeResponse(&buf, "HTTP/1.1", resp, now))

	want := "HTTP/1.1 200 OK\r\n" +
		"Date: Mon, 09 Mar 2026 17:05:07 GMT\r\n" +
		"Content-Length: 16\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<html>...</html>"
	assert.Equal(t, want, buf.String())

	// 標準のクライアントで読めること
	parsed, err := http.ReadResponse(bufio.NewReader(&buf), nil)
	require.NoError(t, err)
	defer parsed.Body.Close()
	assert.Equal(t, 200, parsed.StatusCode)
	assert.Equal(t, int64(16), parsed.ContentLength)
}

func TestWriteResponseKeepsDate(t *testing.T) {
	resp := NewResponse().SetHeader("Date", "Thu, 01 Jan 1970 00:00:00 GMT")

	var buf bytes.Buffer
	require.NoError(t, writeResponse(&buf, "HTTP/1.0", resp, time.Now()))

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Date:")))
	assert.Contains(t, buf.String(), "Date: Thu, 01 Jan 1970 00:00:00 GMT\r\n")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("HTTP/1.0 200 OK\r\n")))
}

func TestWriteResponseWithoutVersion(t *testing.T) {
	resp := NewResponse().SetStatus(404, "Not Found")

	var buf bytes.Buffer
	require.NoError(t, writeResponse(&buf, "", resp, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("404 Not Found\r\n")))
}

func TestAllowOrigin(t *testing.T) {
	testCases := []struct {
		name         string
		headers      map[string]string
		crossDomains string
		want         string
	}{
		{name: "許可", headers: map[string]string{"Origin": "http://a.com"}, crossDomains: "http://a.com,http://b.com", want: "http://a.com"},
		{name: "空白を除く", headers: map[string]string{"Origin": " http://b.com "}, crossDomains: "http://a.com,http://b.com", want: "http://b.com"},
		{name: "部分文字列で照合", headers: map[string]string{"Origin": "a.com"}, crossDomains: "http://a.com", want: "a.com"},
		{name: "未許可", headers: map[string]string{"Origin": "http://c.com"}, crossDomains: "http://a.com,http://b.com"},
		{name: "Originなし", headers: map[string]string{}, crossDomains: "http://a.com"},
		{name: "空のOrigin", headers: map[string]string{"Origin": "  "}, crossDomains: "http://a.com"},
		{name: "許可リストなし", headers: map[string]string{"Origin": "http://a.com"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := NewResponse()
			allowOrigin(&Request{Headers: tc.headers}, resp, tc.crossDomains)

			got, ok := resp.Header("Access-Control-Allow-Origin")
			if tc.want == "" {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

package server

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// dateLayout はDateヘッダーの形式 (RFC 7231 IMF-fixdate)
const dateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// writeResponse はレスポンスを書き出す
// ステータス行、Date (未設定の場合)、その他のヘッダー、空行、ボディの順
func writeResponse(w io.Writer, version string, resp *Response, now time.Time) error {
	bw := bufio.NewWriter(w)

	status := fmt.Sprintf("%d %s", resp.Status(), resp.Message())
	if version != "" {
		fmt.Fprintf(bw, "%s %s\r\n", version, status)
	} else {
		fmt.Fprintf(bw, "%s\r\n", status)
	}

	if _, ok := resp.Header("Date"); !ok {
		fmt.Fprintf(bw, "Date: %s\r\n", now.UTC().Format(dateLayout))
	}
	for _, h := range resp.headers {
		fmt.Fprintf(bw, "%s: %s\r\n", h.Name, h.Value)
	}
	bw.WriteString("\r\n")
	bw.Write(resp.Body())

	return bw.Flush()
}

// allowOrigin はOriginが許可リストに含まれていればそのまま返すヘッダーを付ける
// 許可リストとは部分文字列として照合する
func allowOrigin(req *Request, resp *Response, crossDomains string) {
	origin, ok := req.Header("Origin")
	if !ok {
		return
	}
	origin = strings.TrimSpace(origin)
	if origin == "" || crossDomains == "" {
		return
	}
	if strings.Contains(crossDomains, origin) {
		resp.SetHeader("Access-Control-Allow-Origin", origin)
	}
}

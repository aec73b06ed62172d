package server

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const contentTypeJSON = "application/json"

// contentType はファイル名と内容からContent-Typeを推定する
// 拡張子で決まらない場合は内容から判定する。パラメータ (charset等) は付けない
func contentType(name string, data []byte) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return mediaType(t)
	}
	return mediaType(mimetype.Detect(data).String())
}

// mediaType は "text/html; charset=utf-8" から "text/html" を取り出す
func mediaType(t string) string {
	if i := strings.Index(t, ";"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

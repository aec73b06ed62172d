package server

import (
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"souzaserver/internal/i18n"
	"souzaserver/internal/jsonbody"
)

const indexFile = "index.html"

// ResourceTable はURLパスから事前に組み立てたレスポンスへの対応表
// 起動前に構築され、配信中は読み込み専用として扱う
type ResourceTable struct {
	entries map[string]*Response
}

// NewResourceTable は空のResourceTableを作成する
func NewResourceTable() *ResourceTable {
	return &ResourceTable{entries: make(map[string]*Response)}
}

// Get はパスに対応するレスポンスを返す
func (t *ResourceTable) Get(p string) (*Response, bool) {
	r, ok := t.entries[p]
	return r, ok
}

// Len は登録数を返す
func (t *ResourceTable) Len() int {
	return len(t.entries)
}

// Paths は登録済みのパスをソートして返す
func (t *ResourceTable) Paths() []string {
	paths := make([]string, 0, len(t.entries))
	for p := range t.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// put はレスポンスを登録する
// /index.html で終わるパスは index.html を除いたパスにも登録する
func (t *ResourceTable) put(p string, r *Response) {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	t.entries[p] = r
	if strings.HasSuffix(p, "/"+indexFile) {
		t.entries[strings.TrimSuffix(p, indexFile)] = r
	}
}

// resourceLoader は静的リソースを読み込んでResourceTableに登録する
type resourceLoader struct {
	server  string // エラーボディに入れるサーバー名
	catalog *i18n.Catalog
	logger  *log.Logger
	window  time.Duration // 静的ファイルの読み直し間隔
	now     func() time.Time
}

// loadDirectory はディレクトリを再帰的に走査して全ファイルを登録する
// ディレクトリが存在しない場合は警告を出して何もしない
func (l *resourceLoader) loadDirectory(t *ResourceTable, base string) {
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		l.logger.Printf("警告: 静的フォルダ %s が見つからないかディレクトリではありません", base)
		return
	}

	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// 読めないエントリは記録して次へ進む
			l.logger.Printf("警告: %s の走査に失敗: %v", p, err)
			if d == nil || d.IsDir() {
				return nil
			}
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(base, p)
		if relErr != nil {
			return relErr
		}
		key := "/" + filepath.ToSlash(rel)

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			t.put(key, l.failed(key, readErr))
			return nil
		}
		t.put(key, l.build(key, data).setFile(p, l.window, l.now()))
		return nil
	})
	if err != nil {
		l.logger.Printf("警告: 静的フォルダ %s の走査を中断しました: %v", base, err)
	}
}

// loadArchive はアーカイブ内で base 以下にある全エントリを登録する
func (l *resourceLoader) loadArchive(t *ResourceTable, fsys fs.FS, base string) {
	root := path.Clean(strings.Trim(base, "/"))
	if root == "" {
		root = "."
	}

	info, err := fs.Stat(fsys, root)
	if err != nil || !info.IsDir() {
		l.logger.Printf("警告: アーカイブ内に %s が見つからないかディレクトリではありません", base)
		return
	}

	err = fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			l.logger.Printf("警告: アーカイブ内の %s の走査に失敗: %v", p, err)
			if d == nil || d.IsDir() {
				return nil
			}
		}
		if d.IsDir() {
			return nil
		}

		key := "/" + p
		if root != "." {
			key = "/" + strings.TrimPrefix(p, root+"/")
		}

		data, readErr := fs.ReadFile(fsys, p)
		if readErr != nil {
			t.put(key, l.failed(key, readErr))
			return nil
		}
		t.put(key, l.build(key, data))
		return nil
	})
	if err != nil {
		l.logger.Printf("警告: アーカイブの走査を中断しました: %v", err)
	}
}

// build は 200 の静的レスポンスを組み立てる
func (l *resourceLoader) build(name string, data []byte) *Response {
	return NewResponse().
		SetHeader("Content-Type", contentType(name, data)).
		SetBody(data)
}

// failed は読み込めなかったリソース用の 500 レスポンスを組み立てる
func (l *resourceLoader) failed(key string, err error) *Response {
	l.logger.Printf("エラー: 静的リソース %s の読み込みに失敗: %v", key, err)
	message := l.catalog.Get(l.catalog.DefaultLocale(), i18n.KeyCouldNotReadFile, key)
	return NewResponse().
		SetStatus(500, "Internal Server Error").
		SetHeader("Content-Type", contentTypeJSON).
		SetBody(jsonbody.Message(l.server, message))
}

package server

import (
	"embed"
	"io/fs"
)

// EmbeddedBase は埋め込みアーカイブ内の静的リソースのルート
const EmbeddedBase = "static"

//go:embed all:static
var embedFS embed.FS

// EmbeddedArchive はバイナリに埋め込まれたパッケージアーカイブを返す
// SetStaticResource(EmbeddedBase) で読み込める
func EmbeddedArchive() fs.FS {
	return embedFS
}

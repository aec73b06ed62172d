package main

import (
	"context"
	"log"

	"souzaserver/internal/config"
	"souzaserver/internal/server"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// サーバーを作成
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	// サーバーを起動 (シグナルを受けるまでブロック)
	if err := srv.Run(context.Background()); err != nil {
		log.Fatalf("サーバーの実行に失敗しました: %v", err)
	}
}

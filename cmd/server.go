// Package main はSouza Serverコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"souzaserver/internal/config"
	"souzaserver/internal/server"
)

func main() {
	// コマンドラインオプション
	var (
		port         = flag.Int("port", 0, "サーバーのポート (デフォルト: 9090)")
		static       = flag.String("static", "", "静的リソースのフォルダ、またはアーカイブ内の名前")
		crossDomains = flag.String("cross-domains", "", "許可するOrigin (カンマ区切り)")
		help         = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("Souza Server")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// コマンドラインオプションで設定を上書き
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *static != "" {
		cfg.Server.StaticFolder = *static
	}
	if *crossDomains != "" {
		cfg.Server.CrossDomains = *crossDomains
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("設定の検証に失敗しました: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	log.Printf("%s を起動します: %s", cfg.Server.Name, cfg.ServerAddress())
	if err := srv.Run(context.Background()); err != nil {
		log.Fatalf("サーバーの実行に失敗しました: %v", err)
	}
}

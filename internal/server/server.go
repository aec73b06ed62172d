package server

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	"souzaserver/internal/config"
	"souzaserver/internal/i18n"
)

// ライフサイクルのエラー
var (
	ErrAlreadyStarted = errors.New("server: 既に開始されています")
	ErrNotStarted     = errors.New("server: 開始されていません")
	ErrServing        = errors.New("server: 配信中は変更できません")
)

type state int

const (
	stateNew       state = iota // 未開始
	stateListening              // リッスン中
	stateStopped                // 停止済み
)

// Server はソケットを直接扱うHTTPサーバー
type Server struct {
	config  *config.Config
	catalog *i18n.Catalog
	logger  *log.Logger
	parser  *Parser
	archive fs.FS
	now     func() time.Time

	resources *ResourceTable
	services  map[string]Service

	mu           sync.Mutex
	state        state
	listener     net.Listener
	crossDomains string
	serveErr     error
	done         chan struct{}
	workers      sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
}

// Option はServerの生成オプション
type Option func(*Server)

// WithLogger はログの出力先を設定する
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithArchive は静的リソースを読むパッケージアーカイブを設定する
func WithArchive(fsys fs.FS) Option {
	return func(s *Server) { s.archive = fsys }
}

// WithParser はリクエストパーサーを設定する
func WithParser(p *Parser) Option {
	return func(s *Server) { s.parser = p }
}

// WithClock は現在時刻の取得方法を設定する
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New は新しいServerインスタンスを作成する
// 設定に静的フォルダがあれば読み込む
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	catalog, err := i18n.NewCatalog(cfg.Server.Locale)
	if err != nil {
		return nil, fmt.Errorf("メッセージカタログの作成に失敗: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:    cfg,
		catalog:   catalog,
		logger:    log.Default(),
		parser:    NewParser(),
		archive:   EmbeddedArchive(),
		now:       time.Now,
		resources: NewResourceTable(),
		services:  make(map[string]Service),
		done:      make(chan struct{}),
		baseCtx:   ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	if folder := cfg.Server.StaticFolder; folder != "" {
		if err := s.SetStaticResource(folder); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Resources は静的リソースの対応表を返す
func (s *Server) Resources() *ResourceTable {
	return s.resources
}

// AddServicePath はパスにServiceを登録する
// パスは必ず "/" で始まるように正規化する
func (s *Server) AddServicePath(path string, svc Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateNew {
		return ErrServing
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	s.services[path] = svc
	return nil
}

// SetStaticResource は静的リソースを読み込む
// 絶対パスか "." で始まるパスはファイルシステム、それ以外はアーカイブ内の名前として扱う
func (s *Server) SetStaticResource(basePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateNew {
		return ErrServing
	}

	loader := &resourceLoader{
		server:  s.name(),
		catalog: s.catalog,
		logger:  s.logger,
		window:  s.reloadWindow(),
		now:     s.now,
	}

	if isFilesystemPath(basePath) {
		loader.loadDirectory(s.resources, basePath)
		return nil
	}

	fsys, closeArchive, err := s.openArchive()
	if err != nil {
		return err
	}
	defer closeArchive()
	loader.loadArchive(s.resources, fsys, basePath)
	return nil
}

// openArchive は設定されたアーカイブを開く
// zipファイルが設定されていればそれを、なければ WithArchive の値を使う
func (s *Server) openArchive() (fs.FS, func(), error) {
	if path := s.config.Server.Archive; path != "" {
		rc, err := zip.OpenReader(path)
		if err != nil {
			return nil, nil, fmt.Errorf("アーカイブ %s を開けません: %w", path, err)
		}
		return rc, func() { rc.Close() }, nil
	}
	return s.archive, func() {}, nil
}

// reloadWindow は静的ファイルの読み直し間隔を返す
// キャッシュを使わない設定ではアクセスごとに読み直す
func (s *Server) reloadWindow() time.Duration {
	if s.config.Server.UseCacheOnStaticFolder {
		return DefaultReloadWindow
	}
	return 0
}

func isFilesystemPath(p string) bool {
	return filepath.IsAbs(p) || strings.HasPrefix(p, ".")
}

func (s *Server) name() string {
	return s.config.Server.Name
}

// Start はポートでリッスンを開始する
// クロスドメインの許可リストは設定値を使う
func (s *Server) Start(port int) error {
	return s.StartCrossDomains(port, s.config.Server.CrossDomains)
}

// StartCrossDomains はポートでリッスンを開始する
// 受け付けループは別ゴルーチンで動き、このメソッドはすぐに戻る
func (s *Server) StartCrossDomains(port int, crossDomains string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateNew {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("ポート %d のリッスンに失敗: %w", port, err)
	}
	if limit := s.config.Server.MaxConnections; limit > 0 {
		ln = netutil.LimitListener(ln, limit)
	}

	s.listener = ln
	s.crossDomains = crossDomains
	s.state = stateListening

	s.logger.Printf("%s を起動しました: %s (静的リソース %d 件, サービス %d 件)",
		s.name(), ln.Addr(), s.resources.Len(), len(s.services))

	go s.acceptLoop(ln)
	return nil
}

// Addr はリッスン中のアドレスを返す
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// acceptLoop は停止されるまで接続を受け付け、接続ごとにworkerを起動する
func (s *Server) acceptLoop(ln net.Listener) {
	defer close(s.done)
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.stopped() {
				s.logger.Printf("%s を停止しました", s.name())
				return
			}
			s.logger.Printf("致命的: 接続の受け付けに失敗: %v", err)
			s.mu.Lock()
			s.serveErr = fmt.Errorf("接続の受け付けに失敗: %w", err)
			s.mu.Unlock()
			return
		}

		s.workers.Add(1)
		go newWorker(s, conn).serve()
	}
}

func (s *Server) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateStopped
}

// Stop はリスナーを閉じて受け付けループを終了させる
// 処理中の接続はそのまま最後まで処理される
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.state != stateListening {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.state = stateStopped
	ln := s.listener
	s.mu.Unlock()

	if err := ln.Close(); err != nil {
		return fmt.Errorf("リスナーのクローズに失敗: %w", err)
	}
	return nil
}

// Wait は受け付けループが終了するまで待つ
// 停止以外の理由で終了した場合はそのエラーを返す
func (s *Server) Wait() error {
	s.mu.Lock()
	if s.state == stateNew {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.mu.Unlock()

	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Run は設定のポートでサーバーを起動し、終了するまでブロックする
// コンテキストのキャンセル、SIGINT/SIGTERM、受け付けループの異常終了のいずれかで戻る
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(s.config.Server.Port); err != nil {
		return err
	}

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		s.logger.Println("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.Printf("シグナルを受信しました: %v", sig)
	case <-s.done:
		return s.Wait()
	}

	// 5秒のタイムアウトを設定
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown はサーバーを停止し、処理中の接続が終わるのを待つ
// ctx が先に終了した場合はリクエスト待ちの接続を中断する
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.Stop(); err != nil {
		return err
	}
	if err := s.Wait(); err != nil {
		return err
	}

	finished := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("処理中の接続の終了待ちがタイムアウト: %w", ctx.Err())
	}
}

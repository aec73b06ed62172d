package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// デフォルト値
const (
	DefaultPort   = 9090
	DefaultName   = "Souza Server"
	DefaultLocale = "pt_BR"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Port int    `yaml:"port" toml:"port" validate:"gte=0,lte=65535"` // server.port
	Name string `yaml:"name" toml:"name" validate:"required"`        // server.name

	// 静的リソース
	StaticFolder           string `yaml:"static_folder" toml:"static_folder"`                           // server.static.folder
	UseCacheOnStaticFolder bool   `yaml:"use_cache_on_static_folder" toml:"use_cache_on_static_folder"` // server.use.cache.on.static.folder
	Archive                string `yaml:"archive" toml:"archive"`                                       // zipアーカイブ (空なら埋め込み)

	// 許可するOriginの一覧 (カンマ区切り)
	CrossDomains string `yaml:"cross_domains" toml:"cross_domains"`
	// メッセージのデフォルトロケール
	Locale string `yaml:"locale" toml:"locale" validate:"oneof=pt_BR en"`
	// 同時接続数の上限 (0なら無制限)
	MaxConnections int `yaml:"max_connections" toml:"max_connections" validate:"gte=0"`
}

var validate = validator.New()

// Default はデフォルト値だけで構成された設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   DefaultPort,
			Name:                   DefaultName,
			UseCacheOnStaticFolder: true,
			Locale:                 DefaultLocale,
		},
	}
}

// Load は設定を読み込む
// デフォルト値 → SERVER_CONFIG で指定されたファイル → 環境変数 の順に上書きする
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("SERVER_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// LoadFile は設定ファイルを読み込んで現在の値を上書きする
// 拡張子で形式を判定する (.yaml, .yml, .toml)
func (c *Config) LoadFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("YAMLの解析に失敗: %w", err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("TOMLの解析に失敗: %w", err)
		}
	default:
		return fmt.Errorf("未対応の設定ファイル形式: %s", path)
	}
	return nil
}

// applyEnv は環境変数の値で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Port = getEnvAsIntOrDefault("SERVER_PORT", c.Server.Port)
	c.Server.Name = getEnvOrDefault("SERVER_NAME", c.Server.Name)
	c.Server.StaticFolder = getEnvOrDefault("SERVER_STATIC_FOLDER", c.Server.StaticFolder)
	c.Server.UseCacheOnStaticFolder = getEnvAsBoolOrDefault("SERVER_USE_CACHE_ON_STATIC_FOLDER", c.Server.UseCacheOnStaticFolder)
	c.Server.Archive = getEnvOrDefault("SERVER_ARCHIVE", c.Server.Archive)
	c.Server.CrossDomains = getEnvOrDefault("SERVER_CROSS_DOMAINS", c.Server.CrossDomains)
	c.Server.Locale = getEnvOrDefault("SERVER_LOCALE", c.Server.Locale)
	c.Server.MaxConnections = getEnvAsIntOrDefault("SERVER_MAX_CONNECTIONS", c.Server.MaxConnections)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("無効なサーバー設定: %w", err)
	}
	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
// 全インターフェースでリッスンする
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault は環境変数を真偽値として取得する
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

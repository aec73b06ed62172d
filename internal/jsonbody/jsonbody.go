// Package jsonbody はレスポンスボディ用のJSONを生成します。
// エラーやメッセージのボディはすべてこのパッケージを経由して作られる。
package jsonbody

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ServerMessage はサーバー名と1つのメッセージを持つボディ
type ServerMessage struct {
	Server  string `json:"server"`
	Message string `json:"message"`
}

// Marshal は値をJSONに変換する
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("JSONへの変換に失敗: %w", err)
	}
	return b, nil
}

// Message は {"server": ..., "message": ...} のボディを返す
func Message(server, message string) []byte {
	// 文字列だけの構造体なので失敗しない
	b, _ := Marshal(ServerMessage{Server: server, Message: message})
	return b
}

// Messages はメッセージの配列のボディを返す
func Messages(messages []string) []byte {
	if messages == nil {
		messages = []string{}
	}
	b, _ := Marshal(messages)
	return b
}

// Package apperr はユーザー起因とシステム起因の2種類のエラーを定義します。
//
// ハンドラーはこのどちらかで失敗を通知し、サーバー層がステータスコードと
// ボディへの変換を担当します。
//   - UserError: 呼び出し側の入力が不正 → 400
//   - SystemError: サーバー側の障害 → 500
package apperr

import (
	"strings"

	"souzaserver/internal/i18n"
)

// UserError はユーザー起因のエラー
type UserError struct {
	Messages []i18n.Message
}

// NewUserError は新しいUserErrorを作成する
func NewUserError(messages ...i18n.Message) *UserError {
	return &UserError{Messages: messages}
}

// User はキーだけのメッセージからUserErrorを作成する
func User(keys ...string) *UserError {
	messages := make([]i18n.Message, 0, len(keys))
	for _, key := range keys {
		messages = append(messages, i18n.NewMessage(key))
	}
	return NewUserError(messages...)
}

func (e *UserError) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		parts = append(parts, m.String())
	}
	return "user error: " + strings.Join(parts, "; ")
}

// Localize はロケールに合わせたメッセージの一覧を返す
func (e *UserError) Localize(c *i18n.Catalog, locale string) []string {
	texts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		texts = append(texts, c.Localize(locale, m))
	}
	return texts
}

// SystemError はシステム起因のエラー
// Cause はログ専用でクライアントには返さない
type SystemError struct {
	Message i18n.Message
	Cause   error
}

// NewSystemError は新しいSystemErrorを作成する
func NewSystemError(message i18n.Message, cause error) *SystemError {
	return &SystemError{Message: message, Cause: cause}
}

// System はキーとパラメータからSystemErrorを作成する
func System(key string, params ...string) *SystemError {
	return NewSystemError(i18n.NewMessage(key, params...), nil)
}

func (e *SystemError) Error() string {
	if e.Cause != nil {
		return "system error: " + e.Message.String() + ": " + e.Cause.Error()
	}
	return "system error: " + e.Message.String()
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// Localize はロケールに合わせたメッセージを返す
func (e *SystemError) Localize(c *i18n.Catalog, locale string) string {
	return c.Localize(locale, e.Message)
}

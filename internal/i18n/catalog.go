// Package i18n はローカライズされたメッセージのカタログを提供します。
//
// メッセージはキーで登録され、{0}, {1} ... の形式でパラメータを埋め込めます。
// 未登録のキーはキー文字列そのものをメッセージとして返します。
package i18n

import (
	"fmt"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
)

// Message はカタログのキーとパラメータの組
type Message struct {
	Key    string
	Params []string
}

// NewMessage は新しいMessageを作成する
func NewMessage(key string, params ...string) Message {
	return Message{Key: key, Params: params}
}

// String はデバッグ用にキーとパラメータを返す
func (m Message) String() string {
	if len(m.Params) == 0 {
		return m.Key
	}
	return m.Key + "(" + strings.Join(m.Params, ", ") + ")"
}

// supported はカタログが対応するロケール
var supported = []struct {
	tag        language.Tag
	translator func() locales.Translator
}{
	{language.BrazilianPortuguese, pt_BR.New},
	{language.English, en.New},
}

// Catalog はロケールごとのメッセージを保持する
type Catalog struct {
	uni           *ut.UniversalTranslator
	defaultLocale string
	locales       []string
	matcher       language.Matcher
	arity         map[string]int // キーごとのパラメータ数
}

// NewCatalog は組み込みメッセージを登録したカタログを作成する
// defaultLocale は Accept-Language が一致しない場合に使われる
func NewCatalog(defaultLocale string) (*Catalog, error) {
	var (
		fallback locales.Translator
		all      []locales.Translator
		tags     []language.Tag
		names    []string
	)
	for _, s := range supported {
		tr := s.translator()
		if tr.Locale() == defaultLocale {
			// デフォルトロケールをマッチャーの先頭に置く
			fallback = tr
			tags = append([]language.Tag{s.tag}, tags...)
			names = append([]string{tr.Locale()}, names...)
		} else {
			tags = append(tags, s.tag)
			names = append(names, tr.Locale())
		}
		all = append(all, tr)
	}
	if fallback == nil {
		return nil, fmt.Errorf("未対応のロケール: %s", defaultLocale)
	}

	c := &Catalog{
		uni:           ut.New(fallback, all...),
		defaultLocale: defaultLocale,
		locales:       names,
		matcher:       language.NewMatcher(tags),
		arity:         make(map[string]int),
	}

	for locale, texts := range builtin {
		if err := c.Add(locale, texts); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add はロケールにメッセージを追加する (既存のキーは上書き)
func (c *Catalog) Add(locale string, texts map[string]string) error {
	trans, found := c.uni.GetTranslator(locale)
	if !found {
		return fmt.Errorf("未対応のロケール: %s", locale)
	}
	for key, text := range texts {
		if err := trans.Add(key, text, true); err != nil {
			return fmt.Errorf("メッセージ %s の登録に失敗: %w", key, err)
		}
		if n := strings.Count(text, "{"); n > c.arity[key] {
			c.arity[key] = n
		}
	}
	return nil
}

// DefaultLocale はデフォルトロケールを返す
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// Match は Accept-Language ヘッダーの値から使用するロケールを選ぶ
func (c *Catalog) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return c.defaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.defaultLocale
	}
	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return c.defaultLocale
	}
	return c.locales[index]
}

// Get はロケールのメッセージを取得する
// 未登録のキーはキーそのものを返す
func (c *Catalog) Get(locale, key string, params ...string) string {
	trans, found := c.uni.GetTranslator(locale)
	if !found {
		trans = c.uni.GetFallback()
	}
	// 足りないパラメータは空文字で埋める
	for len(params) < c.arity[key] {
		params = append(params, "")
	}
	text, err := trans.T(key, params...)
	if err != nil {
		return key
	}
	return text
}

// Localize はMessageをロケールの文字列に変換する
func (c *Catalog) Localize(locale string, m Message) string {
	return c.Get(locale, m.Key, m.Params...)
}

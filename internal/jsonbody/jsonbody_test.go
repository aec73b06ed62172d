package jsonbody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	body := Message("Souza Server", `Recurso "/x" não encontrado.`)
	assert.JSONEq(t, `{"server":"Souza Server","message":"Recurso \"/x\" não encontrado."}`, string(body))
}

func TestMessages(t *testing.T) {
	assert.JSONEq(t, `["invalid id","missing name"]`, string(Messages([]string{"invalid id", "missing name"})))
	// nilは空配列になる
	assert.Equal(t, "[]", string(Messages(nil)))
}

func TestMarshal(t *testing.T) {
	b, err := Marshal(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	_, err = Marshal(make(chan int))
	require.Error(t, err)
}

package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPlainObject(t *testing.T) {
	out, err := ExtractJSON(`{"summary":"ok"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)
}

func TestExtractJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"summary\":\"ok\",\"recommendations\":[\"a\"]}\n```"
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"ok","recommendations":["a"]}`, out)
}

func TestExtractJSONBareFence(t *testing.T) {
	raw := "```\n{\"x\":1}\n```"
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, out)
}

func TestExtractJSONThinkPrefix(t *testing.T) {
	raw := "<think>the product is at high risk, let me reason about it</think>\n{\"summary\":\"act now\"}"
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"act now"}`, out)
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	raw := "Here is the result you asked for:\n{\"a\":1}\nHope this helps!"
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("I cannot help with that request.")
	assert.Error(t, err)
}

func TestExtractJSONInvalidJSON(t *testing.T) {
	_, err := ExtractJSON(`{"summary": unterminated`)
	assert.Error(t, err)
}

func TestExtractJSONEmpty(t *testing.T) {
	_, err := ExtractJSON("")
	assert.Error(t, err)
}

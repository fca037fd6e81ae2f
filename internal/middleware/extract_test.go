package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTextStringMessages(t *testing.T) {
	body := []byte(`{
		"model": "claude-sonnet",
		"messages": [
			{"role": "user", "content": "hello"},
			{"role": "assistant", "content": "hi there"},
			{"role": "user", "content": "second question"}
		]
	}`)

	text := ExtractText(body)
	assert.Equal(t, "hello\nhi there\nsecond question", text)
}

func TestExtractTextStructuredContent(t *testing.T) {
	body := []byte(`{
		"messages": [
			{"role": "user", "content": [
				{"type": "text", "text": "look at this"},
				{"type": "image", "source": {"data": "base64..."}},
				{"type": "text", "text": "and this"}
			]}
		]
	}`)

	text := ExtractText(body)
	assert.Equal(t, "look at this\nand this", text)
}

func TestExtractTextSystemPrompt(t *testing.T) {
	body := []byte(`{
		"system": "you are helpful",
		"messages": [{"role": "user", "content": "hello"}]
	}`)

	text := ExtractText(body)
	assert.Equal(t, "hello\nyou are helpful", text)
}

func TestExtractTextSystemAsArray(t *testing.T) {
	body := []byte(`{
		"system": [{"type": "text", "text": "system rule"}],
		"messages": [{"role": "user", "content": "hello"}]
	}`)

	text := ExtractText(body)
	assert.Equal(t, "hello\nsystem rule", text)
}

func TestExtractTextPromptField(t *testing.T) {
	body := []byte(`{"prompt": "complete this sentence"}`)

	text := ExtractText(body)
	assert.Equal(t, "complete this sentence", text)
}

func TestExtractTextGeminiContents(t *testing.T) {
	body := []byte(`{
		"contents": [
			{"parts": [{"text": "first part"}, {"text": "second part"}]},
			{"parts": [{"inline_data": {"data": "base64..."}}]}
		]
	}`)

	text := ExtractText(body)
	assert.Equal(t, "first part\nsecond part", text)
}

func TestExtractTextInvalidOrEmptyBody(t *testing.T) {
	assert.Equal(t, "", ExtractText([]byte(`not json`)))
	assert.Equal(t, "", ExtractText([]byte(`{}`)))
	assert.Equal(t, "", ExtractText([]byte(`{"messages": []}`)))
	assert.Equal(t, "", ExtractText([]byte(`{"messages": ["bare string"]}`)))
}

func TestExtractModelAndCountMessages(t *testing.T) {
	body := []byte(`{"model": "claude-sonnet", "messages": [{"role": "user", "content": "a"}, {"role": "assistant", "content": "b"}]}`)

	assert.Equal(t, "claude-sonnet", extractModel(body))
	assert.Equal(t, 2, countMessages(body))

	assert.Equal(t, "unknown", extractModel([]byte(`{}`)))
	assert.Equal(t, 0, countMessages([]byte(`not json`)))
}

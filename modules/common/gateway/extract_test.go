package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseResponse(t *testing.T, raw string) *ChatResponse {
	t.Helper()
	var resp ChatResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func TestExtractImageFromImagesArray(t *testing.T) {
	resp := parseResponse(t, `{
		"choices": [{"message": {"images": [{"image_url": {"url": "https://cdn.example.com/x.png"}}]}}]
	}`)
	assert.Equal(t, "https://cdn.example.com/x.png", ExtractImage(resp))
}

func TestExtractImageFromContentParts(t *testing.T) {
	resp := parseResponse(t, `{
		"choices": [{"message": {"content": [
			{"type": "text", "text": "here you go"},
			{"type": "image_url", "image_url": {"url": "https://cdn.example.com/y.png"}}
		]}}]
	}`)
	assert.Equal(t, "https://cdn.example.com/y.png", ExtractImage(resp))
}

func TestExtractImageFromInlineData(t *testing.T) {
	resp := parseResponse(t, `{
		"choices": [{"message": {"content": [
			{"type": "image", "inline_data": {"mime_type": "image/jpeg", "data": "aGVsbG8="}}
		]}}]
	}`)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", ExtractImage(resp))
}

func TestExtractImageInlineDataDefaultsToPNG(t *testing.T) {
	resp := parseResponse(t, `{
		"choices": [{"message": {"content": [
			{"type": "image", "inline_data": {"data": "aGVsbG8="}}
		]}}]
	}`)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", ExtractImage(resp))
}

func TestExtractImagePrefersImagesArray(t *testing.T) {
	resp := parseResponse(t, `{
		"choices": [{"message": {
			"images": [{"image_url": {"url": "https://cdn.example.com/first.png"}}],
			"content": [{"type": "image_url", "image_url": {"url": "https://cdn.example.com/second.png"}}]
		}}]
	}`)
	assert.Equal(t, "https://cdn.example.com/first.png", ExtractImage(resp))
}

func TestExtractImageNoImage(t *testing.T) {
	assert.Equal(t, "", ExtractImage(nil))
	assert.Equal(t, "", ExtractImage(&ChatResponse{}))

	textOnly := parseResponse(t, `{
		"choices": [{"message": {"content": "sorry, I cannot do that"}}]
	}`)
	assert.Equal(t, "", ExtractImage(textOnly))

	emptyParts := parseResponse(t, `{
		"choices": [{"message": {"content": [{"type": "text", "text": "no image"}]}}]
	}`)
	assert.Equal(t, "", ExtractImage(emptyParts))
}

package tryon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, IsRateLimitError("gateway error 429: slow down"))
	assert.True(t, IsRateLimitError("Too Many Requests"))
	assert.True(t, IsRateLimitError("provider hit a rate limit"))
	assert.False(t, IsRateLimitError("gateway error 500: boom"))
	assert.False(t, IsRateLimitError(""))
}

func TestUserMessageForPrecedence(t *testing.T) {
	// 생성 실패가 최우선 (rate limit 텍스트가 섞여 있어도)
	assert.Equal(t, MsgPhotoGuidance,
		UserMessageFor("Nenhum modelo conseguiu gerar a imagem. Verifique se a foto do avatar mostra uma pessoa de corpo inteiro. (gateway error 429)"))

	assert.Equal(t, MsgNoCredits, UserMessageFor("gateway error 402: payment required"))
	assert.Equal(t, MsgNoCredits, UserMessageFor("not enough credits"))

	assert.Equal(t, MsgRateLimited, UserMessageFor("gateway error 429: Too Many Requests"))

	// 검증 메시지는 그대로 전달
	validation := "A imagem do peça não está acessível (404)"
	assert.Equal(t, validation, UserMessageFor(validation))

	assert.Equal(t, MsgGeneric, UserMessageFor("something unexpected"))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Message: "A URL do avatar não parece ser uma imagem válida"}
	assert.Equal(t, "A URL do avatar não parece ser uma imagem válida", err.Error())
}

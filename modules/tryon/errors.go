package tryon

import "strings"

// 사용자에게 반환되는 메시지 (원문 제공자 에러는 절대 노출하지 않음)
const (
	MsgGeneric       = "Falha ao processar prova virtual."
	MsgPhotoGuidance = "Não foi possível processar a imagem. Use uma foto de corpo inteiro com boa iluminação e fundo simples."
	MsgNoCredits     = "Créditos insuficientes no serviço de IA. Tente novamente em alguns minutos."
	MsgRateLimited   = "Limite de requisições atingido. Aguarde alguns segundos e tente novamente."

	msgExhausted = "Nenhum modelo conseguiu gerar a imagem. Verifique se a foto do avatar mostra uma pessoa de corpo inteiro."
)

// ValidationError - 입력 이미지 검증 실패 (메시지 자체가 사용자용)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsRateLimitError - 원문 에러 텍스트로 rate limit 여부 판별
func IsRateLimitError(errMsg string) bool {
	return strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "Too Many Requests") ||
		strings.Contains(errMsg, "rate limit")
}

// UserMessageFor - 원문 에러 텍스트를 고정된 사용자 메시지로 변환
// 우선순위: 생성 실패 → 크레딧 부족 → rate limit → 검증 메시지 → 일반 실패
func UserMessageFor(errMsg string) string {
	if strings.Contains(errMsg, "Failed to process") || strings.Contains(errMsg, "Nenhum modelo") {
		return MsgPhotoGuidance
	}
	if strings.Contains(errMsg, "402") || strings.Contains(errMsg, "credits") {
		return MsgNoCredits
	}
	if IsRateLimitError(errMsg) {
		return MsgRateLimited
	}
	if strings.Contains(errMsg, "imagem") {
		return errMsg // 검증 단계에서 이미 사용자용 메시지
	}
	return MsgGeneric
}

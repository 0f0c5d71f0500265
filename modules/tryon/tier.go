package tryon

// Tier - 생성 품질 단계 (비용/품질 오름차순)
type Tier int

const (
	TierFast Tier = iota
	TierBalanced
	TierPremium
)

const (
	ModelFast     = "google/gemini-2.5-flash"
	ModelBalanced = "google/gemini-2.5-pro"
	ModelPremium  = "google/gemini-3-pro-image-preview"
)

func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierBalanced:
		return "balanced"
	case TierPremium:
		return "premium"
	}
	return "unknown"
}

// Model - Tier에 바인딩된 모델 ID
func (t Tier) Model() string {
	switch t {
	case TierFast:
		return ModelFast
	case TierBalanced:
		return ModelBalanced
	}
	return ModelPremium
}

// TierForRetry - 클라이언트 retryCount로 시작 Tier 선택
// 0 → fast, 1 → balanced, 2 이상 → premium
func TierForRetry(retryCount int) Tier {
	switch retryCount {
	case 0:
		return TierFast
	case 1:
		return TierBalanced
	}
	return TierPremium
}

// Candidate - 시도할 (Tier, 모델) 후보
type Candidate struct {
	Tier  Tier
	Model string
}

// Candidates - 시작 Tier부터 premium까지의 후보 목록 (위로만 상승)
func Candidates(start Tier) []Candidate {
	candidates := []Candidate{}
	for t := start; t <= TierPremium; t++ {
		candidates = append(candidates, Candidate{Tier: t, Model: t.Model()})
	}
	return candidates
}

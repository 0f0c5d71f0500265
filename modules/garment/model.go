package garment

import "tryon-server/modules/common/model"

// ExtractRequest - POST /api/garments/extract 요청 바디
type ExtractRequest struct {
	ImageURL    string `json:"imageUrl"`
	ExternalURL string `json:"externalUrl"`
	SourceType  string `json:"sourceType"`
	SourceURL   string `json:"sourceUrl"`
	UserID      string `json:"userId"`
}

// ExtractResponse - 추출 결과
type ExtractResponse struct {
	Success bool                   `json:"success"`
	Garment *model.ExternalGarment `json:"garment,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

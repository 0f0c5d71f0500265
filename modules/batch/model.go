package batch

import "tryon-server/modules/common/fallback"

// 배치 큐 이름
const QueueName = "tryon:batch:queue"

// 피스 사이 대기 시간 (제공자 rate limit 완화)
const DelayBetweenPiecesMs = 2500

// Piece - 배치 작업의 개별 의류
type Piece struct {
	GarmentImageURL string
	Category        string
	GarmentID       string
}

// PieceResult - 피스별 처리 결과 (results JSONB에 누적)
type PieceResult struct {
	GarmentID      string `json:"garment_id,omitempty"`
	ResultID       string `json:"result_id,omitempty"`
	Success        bool   `json:"success"`
	ResultImageURL string `json:"result_image_url,omitempty"`
	ModelUsed      string `json:"model_used,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ParsePieces - pieces JSONB를 안전하게 파싱 (깨진 항목은 건너뜀)
func ParsePieces(raw []map[string]interface{}) []Piece {
	pieces := []Piece{}

	for _, item := range raw {
		garmentURL := fallback.SafeString(item["garmentImageUrl"], "")
		if garmentURL == "" {
			garmentURL = fallback.SafeString(item["garment_image_url"], "")
		}
		if garmentURL == "" {
			continue
		}

		pieces = append(pieces, Piece{
			GarmentImageURL: garmentURL,
			Category:        fallback.SafeCategory(item["category"]),
			GarmentID:       fallback.SafeString(item["garmentId"], fallback.SafeString(item["garment_id"], "")),
		})
	}

	return pieces
}

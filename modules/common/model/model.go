package model

import "time"

// TryOnResult - try_on_results 테이블 구조
type TryOnResult struct {
	ID               string     `json:"id"`
	UserID           *string    `json:"user_id"`
	AvatarID         *string    `json:"avatar_id"`
	GarmentSource    *string    `json:"garment_source"`
	GarmentID        *string    `json:"garment_id"`
	GarmentImageURL  *string    `json:"garment_image_url"`
	ResultImageURL   *string    `json:"result_image_url"`
	Status           string     `json:"status"`
	ProcessingTimeMs *int64     `json:"processing_time_ms"`
	ModelUsed        *string    `json:"model_used"`
	RetryCount       int        `json:"retry_count"`
	ErrorMessage     *string    `json:"error_message"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// BatchJob - try_on_batch_jobs 테이블 구조
type BatchJob struct {
	JobID           string                   `json:"job_id"`
	UserID          *string                  `json:"user_id"`
	AvatarImageURL  string                   `json:"avatar_image_url"`
	Pieces          []map[string]interface{} `json:"pieces"`
	Results         []interface{}            `json:"results"`
	TotalPieces     int                      `json:"total_pieces"`
	CompletedPieces int                      `json:"completed_pieces"`
	FailedPieces    int                      `json:"failed_pieces"`
	JobStatus       string                   `json:"job_status"`
	ErrorMessage    *string                  `json:"error_message"`
	CreatedAt       time.Time                `json:"created_at"`
	StartedAt       *time.Time               `json:"started_at"`
	CompletedAt     *time.Time               `json:"completed_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ExternalGarment - external_garments 테이블 구조
type ExternalGarment struct {
	ID                string    `json:"id"`
	UserID            *string   `json:"user_id"`
	SourceType        string    `json:"source_type"`
	OriginalImageURL  string    `json:"original_image_url"`
	ProcessedImageURL *string   `json:"processed_image_url"`
	DetectedCategory  string    `json:"detected_category"`
	SourceURL         *string   `json:"source_url"`
	Name              *string   `json:"name"`
	CreatedAt         time.Time `json:"created_at"`
}

// StatusEvent - WebSocket으로 전송되는 상태 이벤트
type StatusEvent struct {
	Channel   string      `json:"channel"`
	Type      string      `json:"type"`
	Status    string      `json:"status,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)

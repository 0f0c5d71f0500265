package tryon

// TryOnRequest - POST /api/try-on 요청 바디
type TryOnRequest struct {
	SubjectImageURL string `json:"subjectImageUrl"`
	AvatarImageURL  string `json:"avatarImageUrl"` // 구버전 클라이언트 호환용 alias
	GarmentImageURL string `json:"garmentImageUrl"`
	Category        string `json:"category"`
	ResultID        string `json:"resultId"`
	DemoMode        bool   `json:"demoMode"`
	RetryCount      int    `json:"retryCount"`
	UserID          string `json:"userId"`
}

// Subject - subjectImageUrl 우선, 없으면 avatarImageUrl
func (r *TryOnRequest) Subject() string {
	if r.SubjectImageURL != "" {
		return r.SubjectImageURL
	}
	return r.AvatarImageURL
}

// TryOnOutcome - 처리 결과 (핸들러가 HTTP 응답으로 변환)
type TryOnOutcome struct {
	Success          bool
	ResultImageURL   string
	ProcessingTimeMs int64
	ModelUsed        string
	RetryCount       int
	UserMessage      string
	RateLimited      bool
}

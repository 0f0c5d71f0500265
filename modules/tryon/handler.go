package tryon

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

// Engine - 핸들러가 사용하는 처리 엔진 (Service)
type Engine interface {
	Process(ctx context.Context, req *TryOnRequest) *TryOnOutcome
}

type Handler struct {
	engine Engine
}

func NewHandler(service *Service) *Handler {
	if service == nil {
		return &Handler{}
	}
	return &Handler{
		engine: service,
	}
}

// HandleTryOn - POST /api/try-on
// 가상 피팅 요청 처리 (demoMode 포함)
func (h *Handler) HandleTryOn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

	// OPTIONS 요청 처리
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// POST만 허용
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Engine 확인
	if h.engine == nil {
		log.Println("❌ [TryOn] Service not initialized")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   MsgGeneric,
		})
		return
	}

	// Request 파싱
	var req TryOnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [TryOn] Invalid request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Invalid request format",
		})
		return
	}

	// 필수 입력 검증 (제공자 호출 전 즉시 400)
	if req.Subject() == "" || req.GarmentImageURL == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Avatar image and garment image are required",
		})
		return
	}

	outcome := h.engine.Process(r.Context(), &req)

	if !outcome.Success {
		// rate limit만 상태 코드로 구분, 나머지 실패는 400
		status := http.StatusBadRequest
		if outcome.RateLimited {
			status = http.StatusTooManyRequests
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   outcome.UserMessage,
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":          true,
		"resultImageUrl":   outcome.ResultImageURL,
		"processingTimeMs": outcome.ProcessingTimeMs,
		"model":            outcome.ModelUsed,
		"retryCount":       outcome.RetryCount,
	})
}

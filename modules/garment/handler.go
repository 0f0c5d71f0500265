package garment

import (
	"encoding/json"
	"log"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler() *Handler {
	return &Handler{
		service: NewService(),
	}
}

// HandleExtract - POST /api/garments/extract
// 외부 URL 또는 이미지에서 의류 추출
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
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

	// Service 확인
	if h.service == nil {
		log.Println("❌ [Garment] Service not initialized")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(ExtractResponse{
			Success: false,
			Error:   "Service unavailable",
		})
		return
	}

	// Request 파싱
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Garment] Invalid request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ExtractResponse{
			Success: false,
			Error:   "Invalid request format",
		})
		return
	}

	if req.ImageURL == "" && req.ExternalURL == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Image URL or external URL is required",
		})
		return
	}

	response, err := h.service.Extract(r.Context(), &req)
	if err != nil {
		log.Printf("❌ [Garment] Extract failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ExtractResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	log.Printf("✅ [Garment] Extract completed: %s", response.Garment.ID)
	json.NewEncoder(w).Encode(response)
}

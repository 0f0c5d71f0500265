package batch

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"tryon-server/modules/common/config"
	"tryon-server/modules/common/database"
	"tryon-server/modules/common/model"
	redisClient "tryon-server/modules/common/redis"
)

type Handler struct {
	rdb *redis.Client
	db  *database.Client
}

// EnqueueRequest - Enqueue 요청
type EnqueueRequest struct {
	JobID string `json:"job_id"`
}

// EnqueueResponse - Enqueue 응답
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"job_id,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// CancelResponse - Cancel 응답
type CancelResponse struct {
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	JobID           string `json:"job_id,omitempty"`
	JobStatus       string `json:"job_status,omitempty"`
	CompletedPieces int    `json:"completed_pieces"`
	TotalPieces     int    `json:"total_pieces"`
}

func NewHandler() *Handler {
	cfg := config.GetConfig()

	rdb := redisClient.Connect(cfg)
	if rdb == nil {
		log.Println("⚠️ [Batch] Failed to connect to Redis")
		return nil
	}

	db := database.NewClient()
	if db == nil {
		log.Println("⚠️ [Batch] Failed to initialize Database client")
		return nil
	}

	log.Println("✅ [Batch] Handler initialized with Redis connection")
	return &Handler{
		rdb: rdb,
		db:  db,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/batch/enqueue", h.HandleEnqueue).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/batch/{jobId}/cancel", h.HandleCancel).Methods("POST", "OPTIONS")
	log.Println("✅ Batch routes registered: /api/batch/enqueue, /api/batch/{jobId}/cancel")
}

// HandleEnqueue - POST /api/batch/enqueue
func (h *Handler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

	// OPTIONS 요청 처리
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Request 파싱
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Batch] Invalid request: %v", err)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	// job_id 검증
	if req.JobID == "" {
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "job_id is required",
		})
		return
	}

	log.Printf("📥 [Batch] Received job_id: %s", req.JobID)

	// Redis LPUSH
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.rdb.LPush(ctx, QueueName, req.JobID).Result()
	if err != nil {
		log.Printf("❌ [Batch] Redis LPUSH failed: %v", err)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	// Queue 길이 조회
	queueLen, _ := h.rdb.LLen(ctx, QueueName).Result()

	log.Printf("✅ [Batch] Job %s enqueued successfully (position: %d)", req.JobID, queueLen)

	json.NewEncoder(w).Encode(EnqueueResponse{
		Success:       true,
		Message:       "Job enqueued successfully",
		JobID:         req.JobID,
		Queue:         QueueName,
		QueuePosition: queueLen,
	})
}

// HandleCancel - POST /api/batch/{jobId}/cancel
// Redis 취소 플래그를 세팅하고 현재 진행 상황을 반환
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

	// OPTIONS 요청 처리
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	jobID := mux.Vars(r)["jobId"]
	if jobID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(CancelResponse{
			Success: false,
			Error:   "jobId is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	job, err := h.db.FetchBatchJob(jobID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(CancelResponse{
			Success: false,
			Error:   "Batch job not found",
			JobID:   jobID,
		})
		return
	}

	// 이미 종료된 Job은 플래그를 세팅하지 않음
	if job.JobStatus == model.StatusCompleted || job.JobStatus == model.StatusFailed || job.JobStatus == model.StatusUserCancelled {
		json.NewEncoder(w).Encode(CancelResponse{
			Success:         false,
			Error:           "Job already finished",
			JobID:           jobID,
			JobStatus:       job.JobStatus,
			CompletedPieces: job.CompletedPieces,
			TotalPieces:     job.TotalPieces,
		})
		return
	}

	if err := redisClient.SetJobCancelled(ctx, h.rdb, jobID); err != nil {
		log.Printf("❌ [Batch] Failed to set cancel flag: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(CancelResponse{
			Success: false,
			Error:   "Failed to cancel job",
			JobID:   jobID,
		})
		return
	}

	// 큐에서 아직 안 꺼내진 Job은 바로 user_cancelled 처리
	if job.JobStatus == model.StatusPending {
		if err := h.db.UpdateBatchJobStatus(ctx, jobID, model.StatusUserCancelled); err != nil {
			log.Printf("⚠️ [Batch] Failed to update pending job status: %v", err)
		}
	}

	log.Printf("🚫 [Batch] Cancel requested for job: %s", jobID)

	json.NewEncoder(w).Encode(CancelResponse{
		Success:         true,
		JobID:           jobID,
		JobStatus:       job.JobStatus,
		CompletedPieces: job.CompletedPieces,
		TotalPieces:     job.TotalPieces,
	})
}

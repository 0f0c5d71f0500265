package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"tryon-server/modules/batch"
	"tryon-server/modules/common/config"
	"tryon-server/modules/common/notify"
	"tryon-server/modules/garment"
	"tryon-server/modules/tryon"
)

// 서버 메트릭
type ServerMetrics struct {
	TotalRequests   int       `json:"totalRequests"`
	TryOnRequests   int       `json:"tryOnRequests"`
	GarmentRequests int       `json:"garmentRequests"`
	StartTime       time.Time `json:"startTime"`
	mutex           sync.RWMutex
}

var metrics = &ServerMetrics{
	StartTime: time.Now(),
}

func (m *ServerMetrics) count(path string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRequests++
	switch path {
	case "/api/try-on":
		m.TryOnRequests++
	case "/api/garments/extract":
		m.GarmentRequests++
	}
}

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		metrics.count(r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "tryon-server",
	})
}

// 서버 메트릭 조회 엔드포인트
func getMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.mutex.RLock()
	snapshot := map[string]interface{}{
		"uptime":          time.Since(metrics.StartTime).String(),
		"startTime":       metrics.StartTime,
		"totalRequests":   metrics.TotalRequests,
		"tryOnRequests":   metrics.TryOnRequests,
		"garmentRequests": metrics.GarmentRequests,
	}
	metrics.mutex.RUnlock()

	snapshot["watchers"] = notify.DefaultHub().WatcherCount()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"server": snapshot,
	})
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Try-On 서비스 초기화
	tryOnService := tryon.NewService()
	if tryOnService == nil {
		log.Fatal("❌ Failed to initialize Try-On service")
	}
	tryOnHandler := tryon.NewHandler(tryOnService)

	// Batch Queue Worker 시작 (백그라운드)
	go batch.StartWorker(tryOnService)

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 라우트 설정
	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/metrics", getMetrics).Methods("GET")
	r.HandleFunc("/ws", notify.DefaultHub().HandleWatch)
	r.HandleFunc("/api/try-on", tryOnHandler.HandleTryOn).Methods("POST", "OPTIONS")

	garmentHandler := garment.NewHandler()
	r.HandleFunc("/api/garments/extract", garmentHandler.HandleExtract).Methods("POST", "OPTIONS")

	batchHandler := batch.NewHandler()
	if batchHandler != nil {
		batchHandler.RegisterRoutes(r)
	} else {
		log.Println("⚠️ Batch handler unavailable, batch endpoints disabled")
	}

	port := cfg.Port

	log.Printf("🚀 Virtual Try-On Server starting on port %s", port)
	log.Printf("👗 Try-on endpoint: http://localhost:%s/api/try-on", port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws", port)
	log.Printf("❤️  Health check: http://localhost:%s/health", port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics", port)

	// 서버 시작
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

package batch

import (
	"context"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tryon-server/modules/common/config"
	"tryon-server/modules/common/database"
	"tryon-server/modules/common/model"
	"tryon-server/modules/common/notify"
	redisClient "tryon-server/modules/common/redis"
	"tryon-server/modules/tryon"
)

// Engine - 피스별 가상 피팅 처리 (tryon.Service)
type Engine interface {
	Process(ctx context.Context, req *tryon.TryOnRequest) *tryon.TryOnOutcome
}

// StartWorker - Redis Queue Worker 시작
func StartWorker(engine Engine) {
	log.Println("🔄 Batch Queue Worker starting...")

	cfg := config.GetConfig()

	// Redis 연결
	rdb := redisClient.Connect(cfg)
	if rdb == nil {
		log.Fatal("❌ Failed to connect to Redis")
		return
	}
	log.Println("✅ Redis connected successfully")

	// Database 클라이언트 초기화
	dbClient := database.NewClient()
	if dbClient == nil {
		log.Fatal("❌ Failed to initialize Database client")
		return
	}

	// Queue 감시 시작
	log.Printf("👀 Watching queue: %s", QueueName)

	ctx := context.Background()

	// 무한 루프로 Queue 감시
	for {
		// Job 받기 (BRPOP - Blocking Right Pop)
		result, err := rdb.BRPop(ctx, 0, QueueName).Result()
		if err != nil {
			log.Printf("❌ Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 실제 job_id
		jobID := result[1]
		log.Printf("🎯 Received new batch job: %s", jobID)

		// Job 처리 (goroutine으로 비동기)
		go processBatchJob(ctx, rdb, dbClient, engine, jobID)
	}
}

// processBatchJob - 배치 Job 처리: 피스별로 순차 피팅, 사이사이 대기
func processBatchJob(ctx context.Context, rdb *goredis.Client, db *database.Client, engine Engine, jobID string) {
	log.Printf("🚀 Processing batch job: %s", jobID)

	job, err := db.FetchBatchJob(jobID)
	if err != nil {
		log.Printf("❌ Failed to fetch batch job %s: %v", jobID, err)
		return
	}

	if job.JobStatus != model.StatusPending {
		log.Printf("⚠️ Batch job %s is not pending (status: %s), skipping", jobID, job.JobStatus)
		return
	}

	if redisClient.IsJobCancelled(ctx, rdb, jobID) {
		log.Printf("🚫 Batch job %s cancelled before start", jobID)
		db.UpdateBatchJobStatus(ctx, jobID, model.StatusUserCancelled)
		notify.Publish(jobID, "batch_status", model.StatusUserCancelled, nil)
		return
	}

	pieces := ParsePieces(job.Pieces)
	if len(pieces) == 0 {
		log.Printf("❌ Batch job %s has no valid pieces", jobID)
		db.UpdateBatchJobStatus(ctx, jobID, model.StatusFailed)
		notify.Publish(jobID, "batch_status", model.StatusFailed, nil)
		return
	}

	log.Printf("📦 Batch job %s: %d pieces, avatar: %s", jobID, len(pieces), job.AvatarImageURL)

	db.UpdateBatchJobStatus(ctx, jobID, model.StatusProcessing)
	notify.Publish(jobID, "batch_status", model.StatusProcessing, map[string]interface{}{
		"totalPieces": len(pieces),
	})

	userID := ""
	if job.UserID != nil {
		userID = *job.UserID
	}

	completed := 0
	failed := 0
	results := []interface{}{}

	for i, piece := range pieces {
		// 피스 사이 취소 확인
		if redisClient.IsJobCancelled(ctx, rdb, jobID) {
			log.Printf("🚫 Batch job %s cancelled at piece %d/%d", jobID, i+1, len(pieces))
			db.UpdateBatchJobProgress(ctx, jobID, completed, failed, results)
			db.UpdateBatchJobStatus(ctx, jobID, model.StatusUserCancelled)
			notify.Publish(jobID, "batch_status", model.StatusUserCancelled, map[string]interface{}{
				"completedPieces": completed,
			})
			return
		}

		log.Printf("🎨 Batch job %s: piece %d/%d (%s)", jobID, i+1, len(pieces), piece.Category)

		// 피스별 pending 결과 레코드 생성
		resultID, err := db.CreateTryOnResult(ctx, userID, job.AvatarImageURL, piece.GarmentImageURL)
		if err != nil {
			log.Printf("⚠️ Failed to create result record for piece %d: %v", i+1, err)
			resultID = ""
		}

		outcome := engine.Process(ctx, &tryon.TryOnRequest{
			SubjectImageURL: job.AvatarImageURL,
			GarmentImageURL: piece.GarmentImageURL,
			Category:        piece.Category,
			ResultID:        resultID,
			RetryCount:      0,
			UserID:          userID,
		})

		pieceResult := PieceResult{
			GarmentID: piece.GarmentID,
			ResultID:  resultID,
			Success:   outcome.Success,
		}
		if outcome.Success {
			completed++
			pieceResult.ResultImageURL = outcome.ResultImageURL
			pieceResult.ModelUsed = outcome.ModelUsed
		} else {
			failed++
			pieceResult.Error = outcome.UserMessage
		}
		results = append(results, pieceResult)

		if err := db.UpdateBatchJobProgress(ctx, jobID, completed, failed, results); err != nil {
			log.Printf("⚠️ Failed to update batch progress: %v", err)
		}
		notify.Publish(jobID, "batch_progress", model.StatusProcessing, map[string]interface{}{
			"completedPieces": completed,
			"failedPieces":    failed,
			"totalPieces":     len(pieces),
			"lastResult":      pieceResult,
		})

		// 마지막 피스가 아니면 대기 (제공자 rate limit 완화)
		if i < len(pieces)-1 {
			time.Sleep(DelayBetweenPiecesMs * time.Millisecond)
		}
	}

	finalStatus := model.StatusCompleted
	if completed == 0 {
		finalStatus = model.StatusFailed
	}

	db.UpdateBatchJobStatus(ctx, jobID, finalStatus)
	notify.Publish(jobID, "batch_status", finalStatus, map[string]interface{}{
		"completedPieces": completed,
		"failedPieces":    failed,
	})

	log.Printf("✅ Batch job %s finished: %d completed, %d failed", jobID, completed, failed)
}

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"
	"tryon-server/modules/common/config"
	"tryon-server/modules/common/model"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// CreateTryOnResult - try_on_results에 pending 레코드 생성
func (c *Client) CreateTryOnResult(ctx context.Context, userID, avatarURL, garmentURL string) (string, error) {
	insertData := map[string]interface{}{
		"status":            model.StatusPending,
		"garment_image_url": garmentURL,
		"retry_count":       0,
	}
	if userID != "" {
		insertData["user_id"] = userID
	}

	data, _, err := c.supabase.From("try_on_results").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return "", fmt.Errorf("failed to insert try_on_results record: %w", err)
	}

	var results []model.TryOnResult
	if err := json.Unmarshal(data, &results); err != nil {
		return "", fmt.Errorf("failed to parse insert response: %w", err)
	}

	if len(results) == 0 {
		return "", fmt.Errorf("no try_on_results record returned")
	}

	log.Printf("💾 Try-on result created: %s", results[0].ID)
	return results[0].ID, nil
}

// MarkTryOnProcessing - 결과 레코드를 processing으로 전환
func (c *Client) MarkTryOnProcessing(ctx context.Context, resultID string) error {
	log.Printf("📝 Marking result %s as processing", resultID)

	updateData := map[string]interface{}{
		"status": model.StatusProcessing,
	}

	_, _, err := c.supabase.From("try_on_results").
		Update(updateData, "", "").
		Eq("id", resultID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to mark result processing: %w", err)
	}

	return nil
}

// CompleteTryOn - 결과 레코드를 completed로 전환
func (c *Client) CompleteTryOn(ctx context.Context, resultID, imageURL string, elapsedMs int64, modelUsed string, retryCount int) error {
	log.Printf("📝 Completing result %s (model: %s, %dms)", resultID, modelUsed, elapsedMs)

	updateData := map[string]interface{}{
		"status":             model.StatusCompleted,
		"result_image_url":   imageURL,
		"processing_time_ms": elapsedMs,
		"model_used":         modelUsed,
		"retry_count":        retryCount,
		"completed_at":       "now()",
	}

	_, _, err := c.supabase.From("try_on_results").
		Update(updateData, "", "").
		Eq("id", resultID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to complete result: %w", err)
	}

	log.Printf("✅ Result %s completed", resultID)
	return nil
}

// FailTryOn - 결과 레코드를 failed로 전환 (사용자 메시지 저장)
func (c *Client) FailTryOn(ctx context.Context, resultID, userMessage string, elapsedMs int64, retryCount int) error {
	log.Printf("📝 Failing result %s: %s", resultID, userMessage)

	updateData := map[string]interface{}{
		"status":             model.StatusFailed,
		"error_message":      userMessage,
		"processing_time_ms": elapsedMs,
		"retry_count":        retryCount,
		"completed_at":       "now()",
	}

	_, _, err := c.supabase.From("try_on_results").
		Update(updateData, "", "").
		Eq("id", resultID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to fail result: %w", err)
	}

	log.Printf("✅ Result %s marked failed", resultID)
	return nil
}

// FetchBatchJob - try_on_batch_jobs에서 Job 조회
func (c *Client) FetchBatchJob(jobID string) (*model.BatchJob, error) {
	log.Printf("🔍 Fetching batch job from Supabase: %s", jobID)

	var jobs []model.BatchJob

	data, _, err := c.supabase.From("try_on_batch_jobs").
		Select("*", "exact", false).
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query Supabase: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("batch job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Batch job fetched: %s (status: %s, total_pieces: %d)",
		job.JobID, job.JobStatus, job.TotalPieces)

	return job, nil
}

// UpdateBatchJobStatus - Batch Job 상태 업데이트
func (c *Client) UpdateBatchJobStatus(ctx context.Context, jobID string, status string) error {
	log.Printf("📝 Updating batch job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"job_status": status,
		"updated_at": "now()",
	}

	if status == model.StatusProcessing {
		updateData["started_at"] = "now()"
	} else if status == model.StatusCompleted || status == model.StatusFailed || status == model.StatusUserCancelled {
		updateData["completed_at"] = "now()"
	}

	_, _, err := c.supabase.From("try_on_batch_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update batch job status: %w", err)
	}

	log.Printf("✅ Batch job %s status updated to: %s", jobID, status)
	return nil
}

// UpdateBatchJobProgress - Batch Job 진행 상황 업데이트
func (c *Client) UpdateBatchJobProgress(ctx context.Context, jobID string, completed, failed int, results []interface{}) error {
	log.Printf("📊 Updating batch job progress: %d completed, %d failed", completed, failed)

	updateData := map[string]interface{}{
		"completed_pieces": completed,
		"failed_pieces":    failed,
		"results":          results,
		"updated_at":       "now()",
	}

	_, _, err := c.supabase.From("try_on_batch_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update batch job progress: %w", err)
	}

	return nil
}

// InsertExternalGarment - external_garments 레코드 생성
func (c *Client) InsertExternalGarment(ctx context.Context, garment map[string]interface{}) (*model.ExternalGarment, error) {
	data, _, err := c.supabase.From("external_garments").
		Insert(garment, false, "", "", "").
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to insert external garment: %w", err)
	}

	var garments []model.ExternalGarment
	if err := json.Unmarshal(data, &garments); err != nil {
		return nil, fmt.Errorf("failed to parse garment response: %w", err)
	}

	if len(garments) == 0 {
		return nil, fmt.Errorf("no garment record returned")
	}

	log.Printf("✅ External garment created: %s (category: %s)", garments[0].ID, garments[0].DetectedCategory)
	return &garments[0], nil
}

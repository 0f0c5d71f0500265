package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tryon-server/modules/common/config"
	"tryon-server/modules/common/utils"
)

type Client struct {
	httpClient *http.Client
}

// NewClient - Storage 클라이언트 생성
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// UploadBytes - Supabase Storage에 바이너리 업로드 후 public URL 반환
func (c *Client) UploadBytes(ctx context.Context, bucket, filePath string, data []byte, contentType string) (string, error) {
	cfg := config.GetConfig()

	log.Printf("📤 Uploading to storage: %s/%s (%d bytes)", bucket, filePath, len(data))

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", cfg.SupabaseURL, bucket, filePath)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", cfg.SupabaseURL, bucket, filePath)
	log.Printf("✅ Uploaded: %s", publicURL)
	return publicURL, nil
}

// ArchiveTryOnDataURL - 인라인 data URL 결과를 Storage에 보관하고 public URL 반환
// PNG 페이로드는 WebP로 변환해서 저장 공간 절약
func (c *Client) ArchiveTryOnDataURL(ctx context.Context, dataURL, userID string) (string, error) {
	mimeType, data, err := utils.ParseDataURL(dataURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse data URL: %w", err)
	}

	contentType := mimeType
	ext := "png"

	if mimeType == "image/png" {
		if webpData, convErr := utils.ConvertPNGToWebP(data, 90.0); convErr == nil {
			data = webpData
			contentType = "image/webp"
			ext = "webp"
		} else {
			log.Printf("⚠️ WebP conversion failed, keeping PNG: %v", convErr)
		}
	}

	owner := userID
	if owner == "" {
		owner = "anonymous"
	}

	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	fileName := fmt.Sprintf("tryon_%d_%s.%s", timestamp, uuid.New().String()[:8], ext)
	filePath := fmt.Sprintf("user-%s/%s", owner, fileName)

	return c.UploadBytes(ctx, "try-on-results", filePath, data, contentType)
}

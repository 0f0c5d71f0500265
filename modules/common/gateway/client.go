package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"tryon-server/modules/common/config"
)

type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

func NewClient() *Client {
	cfg := config.GetConfig()

	if cfg.GatewayAPIKey == "" {
		log.Println("⚠️ [Gateway] AI_GATEWAY_API_KEY not configured")
		return nil
	}

	log.Println("✅ [Gateway] Client initialized")
	return &Client{
		httpClient: &http.Client{Timeout: 180 * time.Second}, // 이미지 생성은 긴 타임아웃
		apiURL:     cfg.GatewayURL,
		apiKey:     cfg.GatewayAPIKey,
	}
}

// Generate - 지정된 모델로 가상 피팅 이미지 생성 요청
// 이미지가 없으면 ("", nil) 반환 (상위에서 다음 후보로 진행)
func (c *Client) Generate(ctx context.Context, model, prompt, subjectURL, garmentURL string) (string, error) {
	body := map[string]interface{}{
		"model": model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]string{"url": subjectURL}},
					{"type": "image_url", "image_url": map[string]string{"url": garmentURL}},
				},
			},
		},
		"modalities": []string{"image", "text"},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ [Gateway] Error from %s: status=%d, body=%s", model, resp.StatusCode, truncateString(string(bodyBytes), 300))
		return "", fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	imageURL := ExtractImage(&chatResp)
	if imageURL == "" {
		log.Printf("⚠️ [Gateway] %s returned no image", model)
	}

	return imageURL, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

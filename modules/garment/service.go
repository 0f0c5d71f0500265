package garment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"tryon-server/modules/common/config"
	"tryon-server/modules/common/database"
	"tryon-server/modules/common/storage"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Replicate 배경 제거 모델 (rembg)
	rembgVersion = "fb8af171cfa1616ddcf1242c093f9c46bcada5ad4cf6f2fbe8b81b330ec5c003"

	replicatePredictionsURL = "https://api.replicate.com/v1/predictions"
)

// 페이지에서 추출 실패 시 사용자 안내 메시지
const (
	msgNoProductImage = "Não foi possível encontrar uma imagem de produto nesta página. Tente usar a URL direta da imagem ou fazer upload de um screenshot."
	msgNotRecognized  = "Esta URL não contém uma imagem ou página de produto reconhecível. Tente copiar a URL direta da imagem ou fazer upload de um screenshot."
)

type Service struct {
	db         *database.Client
	storage    *storage.Client
	httpClient *http.Client
}

func NewService() *Service {
	db := database.NewClient()
	if db == nil {
		log.Println("⚠️ [Garment] Database client not available")
		return nil
	}

	log.Println("✅ [Garment] Service initialized")
	return &Service{
		db:         db,
		storage:    storage.NewClient(),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Extract - 외부 URL/이미지에서 의류 추출 파이프라인
// fetch → (HTML이면 이미지 추출) → Storage 업로드 → 배경 제거 → 카테고리 분석 → DB 저장
func (s *Service) Extract(ctx context.Context, req *ExtractRequest) (*ExtractResponse, error) {
	log.Printf("📥 [Garment] Extract request - sourceType: %s, hasImage: %v, hasExternalUrl: %v",
		req.SourceType, req.ImageURL != "", req.ExternalURL != "")

	finalImageURL := req.ImageURL

	if req.ExternalURL != "" {
		uploadedURL, err := s.fetchAndStore(ctx, req.ExternalURL, req.UserID)
		if err != nil {
			return nil, err
		}
		finalImageURL = uploadedURL
	}

	if finalImageURL == "" {
		return nil, fmt.Errorf("Image URL or external URL is required")
	}

	// 배경 제거 (실패해도 원본으로 진행)
	processedImageURL := finalImageURL
	if removed, err := s.removeBackground(ctx, finalImageURL); err == nil && removed != "" {
		processedImageURL = removed
	} else if err != nil {
		log.Printf("⚠️ [Garment] Background removal failed, using original: %v", err)
	}

	// Gemini 비전으로 카테고리 분석 (실패 시 기본값)
	category := s.detectCategory(ctx, finalImageURL)

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = "url"
	}

	sourceURL := req.SourceURL
	if sourceURL == "" {
		sourceURL = req.ExternalURL
	}

	insertData := map[string]interface{}{
		"source_type":         sourceType,
		"original_image_url":  finalImageURL,
		"processed_image_url": processedImageURL,
		"detected_category":   category,
	}
	if req.UserID != "" {
		insertData["user_id"] = req.UserID
	}
	if sourceURL != "" {
		insertData["source_url"] = sourceURL
	}

	garment, err := s.db.InsertExternalGarment(ctx, insertData)
	if err != nil {
		log.Printf("❌ [Garment] Failed to save garment: %v", err)
		return nil, fmt.Errorf("Failed to save extracted garment")
	}

	return &ExtractResponse{
		Success: true,
		Garment: garment,
	}, nil
}

// fetchAndStore - 외부 URL을 서버 측에서 받아 external-garments 버킷에 저장
func (s *Service) fetchAndStore(ctx context.Context, externalURL, userID string) (string, error) {
	log.Printf("🔍 [Garment] Fetching external URL server-side: %s", externalURL)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", externalURL, nil)
	if err != nil {
		return "", fmt.Errorf("Não foi possível processar esta URL")
	}
	httpReq.Header.Set("User-Agent", browserUserAgent)
	httpReq.Header.Set("Accept", "text/html,image/*,*/*;q=0.8")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("❌ [Garment] Failed to fetch external URL: %v", err)
		return "", fmt.Errorf("Não foi possível processar esta URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Falha ao acessar URL: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	var imageData []byte
	imageContentType := "image/jpeg"

	switch {
	case strings.Contains(contentType, "text/html"):
		// 상품 페이지 → HTML에서 이미지 추출
		log.Println("🔍 [Garment] URL is an HTML page, extracting product image...")

		htmlBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("Não foi possível processar esta URL")
		}

		extractedURL := ExtractImageFromHTML(string(htmlBytes), externalURL)
		if extractedURL == "" {
			return "", fmt.Errorf(msgNoProductImage)
		}
		log.Printf("✅ [Garment] Extracted image URL from HTML: %s", extractedURL)

		imageData, imageContentType, err = s.downloadImage(ctx, extractedURL, externalURL)
		if err != nil {
			return "", err
		}

	case strings.HasPrefix(contentType, "image/"):
		log.Println("🔍 [Garment] URL is a direct image")
		imageContentType = contentType
		imageData, err = io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("Não foi possível baixar a imagem do produto")
		}

	default:
		return "", fmt.Errorf(msgNotRecognized)
	}

	ext := extensionFor(imageContentType)
	owner := userID
	if owner == "" {
		owner = "anonymous"
	}
	fileName := fmt.Sprintf("%s/external_%d.%s", owner, time.Now().UnixMilli(), ext)

	publicURL, err := s.storage.UploadBytes(ctx, "external-garments", fileName, imageData, imageContentType)
	if err != nil {
		log.Printf("❌ [Garment] Storage upload error: %v", err)
		return "", fmt.Errorf("Falha ao salvar imagem: %v", err)
	}

	return publicURL, nil
}

func (s *Service) downloadImage(ctx context.Context, imageURL, referer string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("Não foi possível baixar a imagem do produto")
	}
	httpReq.Header.Set("User-Agent", browserUserAgent)
	httpReq.Header.Set("Accept", "image/*,*/*;q=0.8")
	httpReq.Header.Set("Referer", referer)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("Não foi possível baixar a imagem do produto")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("Não foi possível baixar a imagem do produto")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("A URL extraída não aponta para uma imagem válida")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("Não foi possível baixar a imagem do produto")
	}

	return data, contentType, nil
}

func extensionFor(contentType string) string {
	base := contentType
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		base = contentType[:idx]
	}
	switch base {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	}
	return "jpg"
}

// removeBackground - Replicate rembg로 배경 제거
func (s *Service) removeBackground(ctx context.Context, imageURL string) (string, error) {
	cfg := config.GetConfig()
	if cfg.ReplicateAPIKey == "" {
		log.Println("⚠️ [Garment] REPLICATE_API_KEY not configured, skipping background removal")
		return "", nil
	}

	log.Println("🎨 [Garment] Removing background from garment image...")

	body := map[string]interface{}{
		"version": rembgVersion,
		"input": map[string]interface{}{
			"image": imageURL,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", replicatePredictionsURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create prediction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.ReplicateAPIKey)
	httpReq.Header.Set("Prefer", "wait")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("replicate request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read prediction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("replicate error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var prediction struct {
		Status string          `json:"status"`
		Output json.RawMessage `json:"output"`
		URLs   struct {
			Get string `json:"get"`
		} `json:"urls"`
		Error interface{} `json:"error"`
	}
	if err := json.Unmarshal(bodyBytes, &prediction); err != nil {
		return "", fmt.Errorf("failed to parse prediction: %w", err)
	}

	// Prefer: wait가 무시된 경우 폴링
	for prediction.Status == "starting" || prediction.Status == "processing" {
		time.Sleep(1 * time.Second)

		pollReq, err := http.NewRequestWithContext(ctx, "GET", prediction.URLs.Get, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create poll request: %w", err)
		}
		pollReq.Header.Set("Authorization", "Bearer "+cfg.ReplicateAPIKey)

		pollResp, err := s.httpClient.Do(pollReq)
		if err != nil {
			return "", fmt.Errorf("prediction poll failed: %w", err)
		}
		pollBytes, err := io.ReadAll(pollResp.Body)
		pollResp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read poll response: %w", err)
		}
		if err := json.Unmarshal(pollBytes, &prediction); err != nil {
			return "", fmt.Errorf("failed to parse poll response: %w", err)
		}
	}

	if prediction.Status != "succeeded" {
		return "", fmt.Errorf("prediction %s: %v", prediction.Status, prediction.Error)
	}

	// output은 문자열 또는 문자열 배열
	var outputURL string
	if err := json.Unmarshal(prediction.Output, &outputURL); err != nil {
		var outputList []string
		if err := json.Unmarshal(prediction.Output, &outputList); err != nil || len(outputList) == 0 {
			return "", fmt.Errorf("unexpected prediction output shape")
		}
		outputURL = outputList[0]
	}

	log.Println("✅ [Garment] Background removal completed")
	return outputURL, nil
}

// detectCategory - Gemini 비전으로 의류 카테고리 분석 (실패 시 upper_body)
func (s *Service) detectCategory(ctx context.Context, imageURL string) string {
	cfg := config.GetConfig()
	if cfg.GeminiAPIKey == "" {
		log.Println("⚠️ [Garment] GEMINI_API_KEY not configured, using default category")
		return "upper_body"
	}

	imageData, contentType, err := s.downloadImage(ctx, imageURL, imageURL)
	if err != nil {
		log.Printf("⚠️ [Garment] Failed to download image for category detection: %v", err)
		return "upper_body"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Printf("⚠️ [Garment] Failed to create Gemini client: %v", err)
		return "upper_body"
	}
	defer client.Close()

	format := extensionFor(contentType)
	if format == "jpg" {
		format = "jpeg"
	}

	geminiModel := client.GenerativeModel(cfg.GeminiModel)
	resp, err := geminiModel.GenerateContent(ctx,
		genai.ImageData(format, imageData),
		genai.Text("Classify this garment into exactly one category: upper_body, lower_body, dresses, shoes, accessories. Answer with the category name only."),
	)
	if err != nil {
		log.Printf("⚠️ [Garment] Category detection failed: %v", err)
		return "upper_body"
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				category := strings.TrimSpace(strings.ToLower(string(text)))
				switch category {
				case "upper_body", "lower_body", "dresses", "shoes", "accessories":
					log.Printf("✅ [Garment] Detected category: %s", category)
					return category
				}
			}
		}
	}

	return "upper_body"
}

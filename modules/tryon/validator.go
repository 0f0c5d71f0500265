package tryon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// 아이콘/썸네일 크기의 입력을 경고하는 기준 (실패 처리는 안 함)
const minImageBytes = 5000

// validateImageURL - HEAD 요청으로 이미지 접근성/타입 확인
// 네트워크 에러는 로깅만 하고 통과 (다운스트림 모델이 거부하도록 위임)
func (s *Service) validateImageURL(ctx context.Context, url, label string) error {
	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		log.Printf("⚠️ [TryOn] Failed to build validation request for %s: %v", label, err)
		return nil
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("⚠️ [TryOn] Failed to validate %s: %v", label, err)
		return nil
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	contentLength := resp.Header.Get("Content-Length")

	log.Printf("🔍 [TryOn] %s validation - Status: %d, ContentType: %s, Size: %s",
		label, resp.StatusCode, contentType, contentLength)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ValidationError{
			Message: fmt.Sprintf("A imagem do %s não está acessível (%d)", label, resp.StatusCode),
		}
	}

	if !strings.HasPrefix(contentType, "image/") {
		return &ValidationError{
			Message: fmt.Sprintf("A URL do %s não parece ser uma imagem válida", label),
		}
	}

	if contentLength != "" {
		if size, err := strconv.Atoi(contentLength); err == nil && size < minImageBytes {
			log.Printf("⚠️ [TryOn] %s image seems very small: %d bytes", label, size)
		}
	}

	return nil
}

// validateInputs - subject/garment 이미지를 동시에 검증 (독립적인 체크)
func (s *Service) validateInputs(ctx context.Context, subjectURL, garmentURL string) error {
	subjectCh := make(chan error, 1)
	garmentCh := make(chan error, 1)

	go func() {
		subjectCh <- s.validateImageURL(ctx, subjectURL, "avatar")
	}()
	go func() {
		garmentCh <- s.validateImageURL(ctx, garmentURL, "peça")
	}()

	subjectErr := <-subjectCh
	garmentErr := <-garmentCh

	if subjectErr != nil {
		return subjectErr
	}
	return garmentErr
}

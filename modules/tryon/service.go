package tryon

import (
	"context"
	"log"
	"net/http"
	"time"

	"tryon-server/modules/common/database"
	"tryon-server/modules/common/gateway"
	"tryon-server/modules/common/model"
	"tryon-server/modules/common/notify"
	"tryon-server/modules/common/storage"
	"tryon-server/modules/common/utils"
)

// Generator - 이미지 생성 제공자 (gateway.Client)
type Generator interface {
	Generate(ctx context.Context, model, prompt, subjectURL, garmentURL string) (string, error)
}

// Store - try_on_results 레코드 전환 (database.Client)
type Store interface {
	MarkTryOnProcessing(ctx context.Context, resultID string) error
	CompleteTryOn(ctx context.Context, resultID, imageURL string, elapsedMs int64, modelUsed string, retryCount int) error
	FailTryOn(ctx context.Context, resultID, userMessage string, elapsedMs int64, retryCount int) error
}

// Archiver - 인라인 결과를 Storage로 보관 (storage.Client)
type Archiver interface {
	ArchiveTryOnDataURL(ctx context.Context, dataURL, userID string) (string, error)
}

type Service struct {
	gateway    Generator
	store      Store
	archiver   Archiver
	httpClient *http.Client
	sleep      func(time.Duration)
}

func NewService() *Service {
	gw := gateway.NewClient()
	if gw == nil {
		log.Println("⚠️ [TryOn] Gateway client not available")
		return nil
	}

	db := database.NewClient()
	if db == nil {
		log.Println("⚠️ [TryOn] Database client not available")
		return nil
	}

	log.Println("✅ [TryOn] Service initialized")
	return &Service{
		gateway:    gw,
		store:      db,
		archiver:   storage.NewClient(),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sleep:      time.Sleep,
	}
}

// Process - 검증 → 단계적 모델 폴백 → 결과 영속화
// demoMode이거나 resultId가 없으면 스토어에 아무것도 쓰지 않음
func (s *Service) Process(ctx context.Context, req *TryOnRequest) *TryOnOutcome {
	persist := req.ResultID != "" && !req.DemoMode
	category := req.Category
	if category == "" {
		category = "upper_body"
	}

	log.Printf("📥 [TryOn] Request - resultId: %s, demoMode: %v, retryCount: %d, category: %s",
		req.ResultID, req.DemoMode, req.RetryCount, category)

	if persist {
		if err := s.store.MarkTryOnProcessing(ctx, req.ResultID); err != nil {
			log.Printf("⚠️ [TryOn] Failed to mark processing: %v", err)
		}
		notify.Publish(req.ResultID, "try_on_status", model.StatusProcessing, nil)
	}

	startTime := time.Now()

	// 입력 이미지 검증 (동시 실행)
	if err := s.validateInputs(ctx, req.Subject(), req.GarmentImageURL); err != nil {
		return s.fail(ctx, req, persist, err.Error(), time.Since(startTime).Milliseconds())
	}

	// 시작 Tier부터 premium까지 순차 시도
	imageURL, usedModel, lastErr := s.escalate(ctx, req, category)

	elapsed := time.Since(startTime).Milliseconds()

	if imageURL == "" {
		errText := msgExhausted
		if lastErr != nil {
			// rate limit 분류가 원문을 볼 수 있도록 마지막 제공자 에러를 보존
			errText = msgExhausted + " (" + lastErr.Error() + ")"
		}
		return s.fail(ctx, req, persist, errText, elapsed)
	}

	log.Printf("✅ [TryOn] %s completed in %dms", usedModel, elapsed)

	// 인라인 data URL은 Storage로 보관 후 public URL로 교체
	if persist && utils.IsDataURL(imageURL) {
		if archivedURL, err := s.archiver.ArchiveTryOnDataURL(ctx, imageURL, req.UserID); err == nil {
			imageURL = archivedURL
		} else {
			log.Printf("⚠️ [TryOn] Failed to archive inline result, keeping data URL: %v", err)
		}
	}

	if persist {
		if err := s.store.CompleteTryOn(ctx, req.ResultID, imageURL, elapsed, usedModel, req.RetryCount); err != nil {
			log.Printf("⚠️ [TryOn] Failed to persist completion: %v", err)
		}
		notify.Publish(req.ResultID, "try_on_status", model.StatusCompleted, map[string]interface{}{
			"resultImageUrl": imageURL,
			"model":          usedModel,
		})
	}

	return &TryOnOutcome{
		Success:          true,
		ResultImageURL:   imageURL,
		ProcessingTimeMs: elapsed,
		ModelUsed:        usedModel,
		RetryCount:       req.RetryCount,
	}
}

// escalate - 후보를 순서대로 시도, 첫 이미지에서 즉시 종료
// 제공자 에러는 비치명적: 1초 대기 후 다음 후보로 진행
func (s *Service) escalate(ctx context.Context, req *TryOnRequest, category string) (imageURL, usedModel string, lastErr error) {
	candidates := Candidates(TierForRetry(req.RetryCount))

	for _, candidate := range candidates {
		log.Printf("🎨 [TryOn] Trying %s (%s)...", candidate.Model, candidate.Tier)

		result, err := s.gateway.Generate(ctx, candidate.Model, PromptFor(candidate.Tier, category), req.Subject(), req.GarmentImageURL)
		if err != nil {
			log.Printf("❌ [TryOn] %s failed: %v", candidate.Model, err)
			lastErr = err
			s.sleep(1 * time.Second)
			continue
		}

		if result == "" {
			log.Printf("⚠️ [TryOn] %s returned no image, trying next...", candidate.Model)
			continue
		}

		log.Printf("✅ [TryOn] %s succeeded!", candidate.Model)
		return result, candidate.Model, lastErr
	}

	return "", "", lastErr
}

// fail - 원문 에러를 고정된 사용자 메시지로 변환 후 영속화
func (s *Service) fail(ctx context.Context, req *TryOnRequest, persist bool, rawError string, elapsed int64) *TryOnOutcome {
	log.Printf("❌ [TryOn] Failed after %dms: %s", elapsed, rawError)

	userMessage := UserMessageFor(rawError)
	rateLimited := IsRateLimitError(rawError)

	if persist {
		if err := s.store.FailTryOn(ctx, req.ResultID, userMessage, elapsed, req.RetryCount); err != nil {
			log.Printf("⚠️ [TryOn] Failed to persist failure: %v", err)
		}
		notify.Publish(req.ResultID, "try_on_status", model.StatusFailed, map[string]interface{}{
			"error": userMessage,
		})
	}

	return &TryOnOutcome{
		Success:          false,
		ProcessingTimeMs: elapsed,
		RetryCount:       req.RetryCount,
		UserMessage:      userMessage,
		RateLimited:      rateLimited,
	}
}

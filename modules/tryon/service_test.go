package tryon

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	mu      sync.Mutex
	calls   []string
	results map[string]string
	errs    map[string]error
}

func (g *stubGenerator) Generate(ctx context.Context, model, prompt, subjectURL, garmentURL string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, model)
	g.mu.Unlock()

	if err, ok := g.errs[model]; ok {
		return "", err
	}
	return g.results[model], nil
}

type stubStore struct {
	processingCalls int
	completeCalls   int
	failCalls       int
	lastImageURL    string
	lastModel       string
	lastMessage     string
	lastRetryCount  int
}

func (s *stubStore) MarkTryOnProcessing(ctx context.Context, resultID string) error {
	s.processingCalls++
	return nil
}

func (s *stubStore) CompleteTryOn(ctx context.Context, resultID, imageURL string, elapsedMs int64, modelUsed string, retryCount int) error {
	s.completeCalls++
	s.lastImageURL = imageURL
	s.lastModel = modelUsed
	s.lastRetryCount = retryCount
	return nil
}

func (s *stubStore) FailTryOn(ctx context.Context, resultID, userMessage string, elapsedMs int64, retryCount int) error {
	s.failCalls++
	s.lastMessage = userMessage
	s.lastRetryCount = retryCount
	return nil
}

type stubArchiver struct {
	calls int
	url   string
	err   error
}

func (a *stubArchiver) ArchiveTryOnDataURL(ctx context.Context, dataURL, userID string) (string, error) {
	a.calls++
	return a.url, a.err
}

func newServiceWithStubs(gen *stubGenerator, store *stubStore, archiver *stubArchiver, sleeps *[]time.Duration) *Service {
	return &Service{
		gateway:    gen,
		store:      store,
		archiver:   archiver,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		sleep: func(d time.Duration) {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
		},
	}
}

func validRequest(srvURL string) *TryOnRequest {
	return &TryOnRequest{
		SubjectImageURL: srvURL,
		GarmentImageURL: srvURL,
		ResultID:        "result-123",
		RetryCount:      0,
		UserID:          "user-1",
	}
}

func TestProcessStopsAtFirstImage(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	gen := &stubGenerator{results: map[string]string{
		ModelFast: "https://cdn.example.com/result.png",
	}}
	store := &stubStore{}
	svc := newServiceWithStubs(gen, store, &stubArchiver{}, nil)

	outcome := svc.Process(context.Background(), validRequest(srv.URL))

	require.True(t, outcome.Success)
	assert.Equal(t, "https://cdn.example.com/result.png", outcome.ResultImageURL)
	assert.Equal(t, ModelFast, outcome.ModelUsed)
	assert.Equal(t, []string{ModelFast}, gen.calls)
	assert.Equal(t, 1, store.processingCalls)
	assert.Equal(t, 1, store.completeCalls)
	assert.Equal(t, ModelFast, store.lastModel)
}

func TestProcessFallsThroughOnNullResult(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	gen := &stubGenerator{results: map[string]string{
		ModelFast:     "",
		ModelBalanced: "https://cdn.example.com/result.png",
	}}
	var sleeps []time.Duration
	svc := newServiceWithStubs(gen, &stubStore{}, &stubArchiver{}, &sleeps)

	outcome := svc.Process(context.Background(), validRequest(srv.URL))

	require.True(t, outcome.Success)
	assert.Equal(t, ModelBalanced, outcome.ModelUsed)
	assert.Equal(t, []string{ModelFast, ModelBalanced}, gen.calls)
	// null 결과는 대기 없이 다음 후보로
	assert.Empty(t, sleeps)
}

func TestProcessSleepsAfterProviderError(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	gen := &stubGenerator{
		errs:    map[string]error{ModelFast: errors.New("gateway error 500: boom")},
		results: map[string]string{ModelBalanced: "https://cdn.example.com/result.png"},
	}
	var sleeps []time.Duration
	svc := newServiceWithStubs(gen, &stubStore{}, &stubArchiver{}, &sleeps)

	outcome := svc.Process(context.Background(), validRequest(srv.URL))

	require.True(t, outcome.Success)
	assert.Equal(t, []string{ModelFast, ModelBalanced}, gen.calls)
	assert.Equal(t, []time.Duration{1 * time.Second}, sleeps)
}

func TestProcessExhaustionMapsToPhotoGuidance(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	gen := &stubGenerator{errs: map[string]error{
		ModelFast:     errors.New("gateway error 500: a"),
		ModelBalanced: errors.New("gateway error 500: b"),
		ModelPremium:  errors.New("gateway error 500: c"),
	}}
	store := &stubStore{}
	var sleeps []time.Duration
	svc := newServiceWithStubs(gen, store, &stubArchiver{}, &sleeps)

	outcome := svc.Process(context.Background(), validRequest(srv.URL))

	require.False(t, outcome.Success)
	assert.Equal(t, MsgPhotoGuidance, outcome.UserMessage)
	assert.False(t, outcome.RateLimited)
	assert.Equal(t, 3, len(gen.calls))
	assert.Equal(t, 3, len(sleeps))
	assert.Equal(t, 1, store.failCalls)
	assert.Equal(t, MsgPhotoGuidance, store.lastMessage)
}

func TestProcessRateLimitFromAnyTier(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	gen := &stubGenerator{errs: map[string]error{
		ModelPremium: errors.New("gateway error 429: Too Many Requests"),
	}}
	req := validRequest(srv.URL)
	req.RetryCount = 2 // premium만 시도
	svc := newServiceWithStubs(gen, &stubStore{}, &stubArchiver{}, nil)

	outcome := svc.Process(context.Background(), req)

	require.False(t, outcome.Success)
	assert.True(t, outcome.RateLimited)
	assert.Equal(t, []string{ModelPremium}, gen.calls)
}

func TestProcessRetryCountSelectsStartTier(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	gen := &stubGenerator{results: map[string]string{
		ModelBalanced: "https://cdn.example.com/result.png",
	}}
	req := validRequest(srv.URL)
	req.RetryCount = 1
	svc := newServiceWithStubs(gen, &stubStore{}, &stubArchiver{}, nil)

	outcome := svc.Process(context.Background(), req)

	require.True(t, outcome.Success)
	assert.Equal(t, 1, outcome.RetryCount)
	// fast는 건너뛰고 balanced부터
	assert.Equal(t, []string{ModelBalanced}, gen.calls)
}

func TestProcessDemoModeSkipsPersistence(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	gen := &stubGenerator{results: map[string]string{
		ModelFast: "https://cdn.example.com/result.png",
	}}
	store := &stubStore{}
	archiver := &stubArchiver{}
	svc := newServiceWithStubs(gen, store, archiver, nil)

	req := &TryOnRequest{
		SubjectImageURL: srv.URL,
		GarmentImageURL: srv.URL,
		DemoMode:        true,
	}
	outcome := svc.Process(context.Background(), req)

	require.True(t, outcome.Success)
	assert.Equal(t, 0, store.processingCalls)
	assert.Equal(t, 0, store.completeCalls)
	assert.Equal(t, 0, store.failCalls)
	assert.Equal(t, 0, archiver.calls)
}

func TestProcessValidationFailureSkipsProviders(t *testing.T) {
	good := imageServer(http.StatusOK, "image/png")
	defer good.Close()
	bad := imageServer(http.StatusNotFound, "text/html")
	defer bad.Close()

	gen := &stubGenerator{}
	store := &stubStore{}
	svc := newServiceWithStubs(gen, store, &stubArchiver{}, nil)

	req := validRequest(good.URL)
	req.GarmentImageURL = bad.URL
	outcome := svc.Process(context.Background(), req)

	require.False(t, outcome.Success)
	assert.False(t, outcome.RateLimited)
	assert.Contains(t, outcome.UserMessage, "peça")
	assert.Empty(t, gen.calls)
	assert.Equal(t, 1, store.failCalls)
}

func TestProcessArchivesInlineResult(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	gen := &stubGenerator{results: map[string]string{
		ModelFast: "data:image/png;base64,aGVsbG8=",
	}}
	store := &stubStore{}
	archiver := &stubArchiver{url: "https://storage.example.com/try-on-results/user-1/a.webp"}
	svc := newServiceWithStubs(gen, store, archiver, nil)

	outcome := svc.Process(context.Background(), validRequest(srv.URL))

	require.True(t, outcome.Success)
	assert.Equal(t, 1, archiver.calls)
	assert.Equal(t, archiver.url, outcome.ResultImageURL)
	assert.Equal(t, archiver.url, store.lastImageURL)
}

func TestProcessKeepsDataURLWhenArchiveFails(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	dataURL := "data:image/png;base64,aGVsbG8="
	gen := &stubGenerator{results: map[string]string{ModelFast: dataURL}}
	archiver := &stubArchiver{err: errors.New("storage unavailable")}
	svc := newServiceWithStubs(gen, &stubStore{}, archiver, nil)

	outcome := svc.Process(context.Background(), validRequest(srv.URL))

	require.True(t, outcome.Success)
	assert.Equal(t, dataURL, outcome.ResultImageURL)
}

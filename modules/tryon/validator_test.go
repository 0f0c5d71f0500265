package tryon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		sleep:      func(time.Duration) {},
	}
}

func imageServer(status int, contentType string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", "100000")
		w.WriteHeader(status)
	}))
}

func TestValidateImageURLAccepts2xxImage(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/jpeg")
	defer srv.Close()

	s := newTestService()
	err := s.validateImageURL(context.Background(), srv.URL, "avatar")
	assert.NoError(t, err)
}

func TestValidateImageURLRejects404(t *testing.T) {
	srv := imageServer(http.StatusNotFound, "text/html")
	defer srv.Close()

	s := newTestService()
	err := s.validateImageURL(context.Background(), srv.URL, "peça")
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Message, "peça")
	assert.Contains(t, valErr.Message, "404")
}

func TestValidateImageURLRejectsNonImage(t *testing.T) {
	srv := imageServer(http.StatusOK, "text/html")
	defer srv.Close()

	s := newTestService()
	err := s.validateImageURL(context.Background(), srv.URL, "avatar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "não parece ser uma imagem válida")
	assert.Contains(t, err.Error(), "avatar")
}

func TestValidateImageURLSwallowsTransportErrors(t *testing.T) {
	// 닫힌 서버 = 네트워크 에러 → 통과 (다운스트림이 거부하도록)
	srv := imageServer(http.StatusOK, "image/png")
	srv.Close()

	s := newTestService()
	err := s.validateImageURL(context.Background(), srv.URL, "avatar")
	assert.NoError(t, err)
}

func TestValidateImageURLIsIdempotent(t *testing.T) {
	srv := imageServer(http.StatusOK, "image/png")
	defer srv.Close()

	s := newTestService()
	first := s.validateImageURL(context.Background(), srv.URL, "avatar")
	second := s.validateImageURL(context.Background(), srv.URL, "avatar")
	assert.Equal(t, first, second)
	assert.NoError(t, first)
}

func TestValidateInputsPrefersSubjectError(t *testing.T) {
	badSubject := imageServer(http.StatusNotFound, "text/html")
	defer badSubject.Close()
	badGarment := imageServer(http.StatusForbidden, "text/html")
	defer badGarment.Close()

	s := newTestService()
	err := s.validateInputs(context.Background(), badSubject.URL, badGarment.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "avatar")
}

package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"log"
	"strings"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// ConvertPNGToWebP - PNG 바이너리를 WebP로 변환
func ConvertPNGToWebP(pngData []byte, quality float32) ([]byte, error) {
	log.Printf("🔄 Converting PNG to WebP (quality: %.1f)", quality)

	// PNG 디코딩
	pngReader := bytes.NewReader(pngData)
	img, err := png.Decode(pngReader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}

	// WebP 인코딩
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	err = webp.Encode(&webpBuffer, img, options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ PNG converted to WebP: %d bytes → %d bytes (%.1f%% reduction)",
		len(pngData), len(webpData),
		float64(len(pngData)-len(webpData))/float64(len(pngData))*100)

	return webpData, nil
}

// IsDataURL - data: URL 여부 확인
func IsDataURL(url string) bool {
	return strings.HasPrefix(url, "data:")
}

// ParseDataURL - data URL에서 MIME 타입과 바이너리 추출
func ParseDataURL(dataURL string) (mimeType string, data []byte, err error) {
	if !IsDataURL(dataURL) {
		return "", nil, fmt.Errorf("not a data URL")
	}

	commaIdx := strings.Index(dataURL, ",")
	if commaIdx < 0 {
		return "", nil, fmt.Errorf("malformed data URL: missing comma")
	}

	header := dataURL[len("data:"):commaIdx]
	payload := dataURL[commaIdx+1:]

	mimeType = header
	if semiIdx := strings.Index(header, ";"); semiIdx >= 0 {
		mimeType = header[:semiIdx]
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}

	return mimeType, data, nil
}

// BuildDataURL - MIME 타입과 base64 데이터로 data URL 생성
func BuildDataURL(mimeType, base64Data string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64Data
}

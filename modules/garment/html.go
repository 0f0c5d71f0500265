package garment

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// 메타 태그 패턴 (property/content 순서 양방향 지원)
var (
	ogImageRe         = regexp.MustCompile(`(?i)<meta\s+(?:property|name)=["']og:image["']\s+content=["']([^"']+)["']`)
	ogImageRevRe      = regexp.MustCompile(`(?i)<meta\s+content=["']([^"']+)["']\s+(?:property|name)=["']og:image["']`)
	twitterImageRe    = regexp.MustCompile(`(?i)<meta\s+(?:property|name)=["']twitter:image["']\s+content=["']([^"']+)["']`)
	twitterImageRevRe = regexp.MustCompile(`(?i)<meta\s+content=["']([^"']+)["']\s+(?:property|name)=["']twitter:image["']`)
	productImageRe    = regexp.MustCompile(`(?i)<meta\s+(?:property|name)=["']product:image["']\s+content=["']([^"']+)["']`)
	productImageRevRe = regexp.MustCompile(`(?i)<meta\s+content=["']([^"']+)["']\s+(?:property|name)=["']product:image["']`)
)

// 이커머스 상품 이미지 패턴
var productPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)class=["'][^"']*product[^"']*image[^"']*["'][^>]*src=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)class=["'][^"']*main[^"']*image[^"']*["'][^>]*src=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)id=["'][^"']*product[^"']*["'][^>]*src=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)data-zoom-image=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)data-large-image=["']([^"']+)["']`),
}

var (
	imgTagRe    = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)
	imgWidthRe  = regexp.MustCompile(`(?i)width=["']?(\d+)`)
	imgHeightRe = regexp.MustCompile(`(?i)height=["']?(\d+)`)
)

// ExtractImageFromHTML - 상품 페이지 HTML에서 대표 이미지 URL 추출
// 우선순위: og:image → twitter:image → product:image → 상품 img 패턴 → 큰 이미지 휴리스틱
func ExtractImageFromHTML(html, baseURL string) string {
	metaPatterns := []*regexp.Regexp{
		ogImageRe, ogImageRevRe,
		twitterImageRe, twitterImageRevRe,
		productImageRe, productImageRevRe,
	}
	for _, re := range metaPatterns {
		if m := re.FindStringSubmatch(html); len(m) > 1 && m[1] != "" {
			return resolveURL(m[1], baseURL)
		}
	}

	for _, re := range productPatterns {
		if m := re.FindStringSubmatch(html); len(m) > 1 && m[1] != "" {
			return resolveURL(m[1], baseURL)
		}
	}

	// 큰 이미지 휴리스틱 (아이콘/로고 제외, 상품 관련 키워드 우선)
	for _, m := range imgTagRe.FindAllStringSubmatch(html, -1) {
		imgTag := m[0]
		src := m[1]

		if containsAny(src, "icon", "logo", "sprite", "avatar", "thumb", "1x1") {
			continue
		}

		if containsAny(src, "product", "main", "large", "zoom", "detail", "hero") {
			return resolveURL(src, baseURL)
		}

		if dimensionAtLeast(imgTag, imgWidthRe, 300) || dimensionAtLeast(imgTag, imgHeightRe, 300) {
			return resolveURL(src, baseURL)
		}
	}

	return ""
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func dimensionAtLeast(imgTag string, re *regexp.Regexp, min int) bool {
	if m := re.FindStringSubmatch(imgTag); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= min {
			return true
		}
	}
	return false
}

// resolveURL - 상대 URL을 절대 URL로 변환
func resolveURL(rawURL, baseURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	if strings.HasPrefix(rawURL, "//") {
		return "https:" + rawURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return rawURL
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return base.ResolveReference(ref).String()
}

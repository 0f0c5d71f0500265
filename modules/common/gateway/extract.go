package gateway

import "encoding/json"

// ChatResponse - gateway chat/completions 응답 구조
type ChatResponse struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message ChoiceMessage `json:"message"`
}

// ChoiceMessage - content는 모델에 따라 문자열 또는 파트 배열로 옴
type ChoiceMessage struct {
	Images  []ImageEntry    `json:"images"`
	Content json.RawMessage `json:"content"`
}

type ImageEntry struct {
	ImageURL ImageRef `json:"image_url"`
}

type ImageRef struct {
	URL string `json:"url"`
}

type ContentPart struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	ImageURL   *ImageRef   `json:"image_url"`
	InlineData *InlineData `json:"inline_data"`
}

type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// ExtractImage - 응답에서 이미지 URL(또는 data URL)을 추출
// 모델마다 이미지를 담는 위치가 다르므로 순서대로 확인:
// 1. message.images[0].image_url.url
// 2. content 배열의 image_url 파트
// 3. content 배열의 inline_data 파트 (base64 → data URL)
func ExtractImage(resp *ChatResponse) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}

	msg := resp.Choices[0].Message

	// 1. images 필드
	if len(msg.Images) > 0 && msg.Images[0].ImageURL.URL != "" {
		return msg.Images[0].ImageURL.URL
	}

	// 2-3. content 파트 배열 (문자열 content면 파싱 실패 → 무시)
	var parts []ContentPart
	if len(msg.Content) > 0 {
		if err := json.Unmarshal(msg.Content, &parts); err != nil {
			return ""
		}
	}

	for _, part := range parts {
		if part.Type == "image_url" && part.ImageURL != nil && part.ImageURL.URL != "" {
			return part.ImageURL.URL
		}
	}

	for _, part := range parts {
		if part.Type == "image" && part.InlineData != nil && part.InlineData.Data != "" {
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return "data:" + mime + ";base64," + part.InlineData.Data
		}
	}

	return ""
}

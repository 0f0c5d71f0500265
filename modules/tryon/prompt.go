package tryon

import "fmt"

const basePrompt = `You are an expert virtual try-on AI creating fashion photography.

TASK: Seamlessly dress the person in the FIRST image with the garment from the SECOND image.

ABSOLUTE REQUIREMENTS:
1. OUTPUT MUST BE VERTICAL (PORTRAIT) - Same orientation as the person photo
2. FULL BODY: Show complete person HEAD TO FEET - never crop head or face
3. EXACT ASPECT RATIO: Match the first image dimensions precisely
4. PRESERVE IDENTITY: Keep face, hair, skin tone, body shape, pose unchanged
5. NATURAL FIT: The garment should look naturally worn, not pasted on
6. PHOTOREALISTIC: Professional fashion photography quality

CRITICAL: Output a SINGLE image with VERTICAL orientation matching the input person photo.`

const balancedAddendum = `

QUALITY REQUIREMENTS:
- High resolution output
- Good fabric texture rendering
- Natural lighting integration
- Professional photography quality`

const premiumAddendum = `

PREMIUM QUALITY REQUIREMENTS:
- Ultra-high resolution output
- Perfect fabric texture and draping
- Accurate lighting and shadows
- Flawless blend between garment and body
- Studio-quality fashion photography finish`

// PromptFor - Tier별 프롬프트 생성 (높은 Tier일수록 요구사항 추가)
func PromptFor(tier Tier, category string) string {
	prompt := basePrompt

	switch tier {
	case TierBalanced:
		prompt += balancedAddendum
	case TierPremium:
		prompt += premiumAddendum
	}

	if category != "" {
		prompt += fmt.Sprintf("\n\nGARMENT CATEGORY: %s", category)
	}

	return prompt
}

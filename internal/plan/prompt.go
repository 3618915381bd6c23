package plan

import (
	"fmt"
	"math/rand"
	"strings"
)

var cameraMoves = []string{
	"slow dolly-in",
	"handheld parallax motion",
	"gentle crane rise",
	"tracking shot from side profile",
	"center-framed push-in",
	"over-shoulder reveal",
}

var styleTokens = map[string][]string{
	"cinematic": {
		"cinematic composition",
		"natural skin tones",
		"high dynamic range lighting",
		"coherent facial anatomy",
	},
	"performance": {
		"energetic performance framing",
		"stage-like confidence",
		"dynamic camera movement",
		"strong visual rhythm",
	},
	"abstract": {
		"stylized visual poetry",
		"bold color contrast",
		"symbolic scene design",
		"surreal but coherent motion",
	},
	"brand-promo": {
		"commercial-grade polish",
		"clean premium aesthetic",
		"product storytelling energy",
		"ad-ready lighting",
	},
}

const negativePrompt = "text, logo, watermark, unreadable typography, blurry, overexposed, underexposed, " +
	"gray blob, abstract texture mush, deformed anatomy, extra limbs, flicker, jitter"

func sectionDescriptor(sectionLabel string) string {
	switch strings.ToLower(sectionLabel) {
	case "intro":
		return "establishing shot with atmosphere and anticipation"
	case "verse":
		return "narrative medium shot with subtle movement"
	case "pre-chorus":
		return "rising tension with forward camera drift"
	case "chorus":
		return "hero shot, strong subject clarity, expressive motion"
	case "bridge":
		return "contrast section with unexpected angle and mood shift"
	case "outro":
		return "closing shot with graceful deceleration"
	default:
		return "stylized music video shot with clear subject and coherent action"
	}
}

// buildPrompt renders the generation prompt for one shot. All randomized
// choices come from rng so the same seed reproduces the same plan.
func buildPrompt(rng *rand.Rand, theme, stylePreset, sectionLabel, brand string) string {
	camera := cameraMoves[rng.Intn(len(cameraMoves))]
	style := strings.Join(sampleTokens(rng, tokensFor(stylePreset), 3), ", ")

	brandClause := ""
	if trimmed := strings.TrimSpace(brand); trimmed != "" {
		brandClause = fmt.Sprintf(", subtle visual motif inspired by %s, no readable logos or text", trimmed)
	}
	return fmt.Sprintf(
		"music video scene, %s, %s, %s, %s, clear human subject, coherent anatomy, cinematic realism%s",
		strings.TrimSpace(theme), sectionDescriptor(sectionLabel), camera, style, brandClause,
	)
}

func tokensFor(stylePreset string) []string {
	if tokens, ok := styleTokens[stylePreset]; ok {
		return tokens
	}
	return styleTokens["cinematic"]
}

// sampleTokens picks count distinct tokens in random order.
func sampleTokens(rng *rand.Rand, tokens []string, count int) []string {
	if count > len(tokens) {
		count = len(tokens)
	}
	picked := make([]string, 0, count)
	for _, idx := range rng.Perm(len(tokens))[:count] {
		picked = append(picked, tokens[idx])
	}
	return picked
}

package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

const faceSystemInstruction = `You are a facial wellness assistant that estimates visible facial puffiness (fluid retention) from a single selfie.
Respond with ONLY a JSON object, no markdown and no commentary, with exactly these keys:
{
  "score": integer 0-100, where 0 means no visible puffiness and 100 means severe puffiness,
  "focus_areas": array of at most 8 short strings naming facial areas that look puffy (for example "under-eyes", "jawline", "cheeks"),
  "analysis_summary": one or two sentences describing what you observed
}
Do not give medical diagnoses. If no face is visible, return score 0 and an empty focus_areas array.
Write every string value in %s.`

const foodSystemInstruction = `You are a nutrition assistant that estimates the sodium content of a meal from a single photo.
Respond with ONLY a JSON object, no markdown and no commentary, with exactly these keys:
{
  "food_name": short name of the dish or food,
  "sodium_mg": integer estimate of total sodium in milligrams for the visible portion,
  "bloat_risk": one of "low", "moderate", "high", "extreme",
  "counter_measure": one practical sentence on how to offset the sodium (hydration, potassium-rich foods, movement)
}
If no food is visible, use sodium_mg 0 and bloat_risk "low".
Write food_name and counter_measure in %s.`

// SystemInstruction returns the JSON-only system instruction for an analysis kind.
func SystemInstruction(kind models.AnalysisKind, locale models.Locale) string {
	if kind == models.AnalysisKindFood {
		return fmt.Sprintf(foodSystemInstruction, locale.LanguageName())
	}
	return fmt.Sprintf(faceSystemInstruction, locale.LanguageName())
}

// UserPrompt builds the per-request text part. Client metadata is passed
// through as JSON so the model sees it as data, not instructions.
func UserPrompt(kind models.AnalysisKind, req *models.AnalysisRequest) string {
	var sb strings.Builder
	if kind == models.AnalysisKindFood {
		sb.WriteString("Analyze the attached food photo.")
	} else {
		sb.WriteString("Analyze the attached face photo.")
	}
	if ts := strings.TrimSpace(req.Timestamp); ts != "" {
		fmt.Fprintf(&sb, "\nCaptured at: %s", ts)
	}
	if len(req.Metadata) > 0 {
		if b, err := json.Marshal(req.Metadata); err == nil {
			fmt.Fprintf(&sb, "\nClient metadata (JSON): %s", b)
		}
	}
	return sb.String()
}

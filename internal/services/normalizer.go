package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lymphly/vps-ai-bridge/internal/metrics"
	"github.com/lymphly/vps-ai-bridge/internal/models"
)

const (
	// MaxFocusAreas caps the focus_areas list.
	MaxFocusAreas = 8
	// MaxSodiumMg is the largest sodium value reported for a single item.
	MaxSodiumMg = 50_000

	maxFocusAreaRunes = 48
	maxSummaryRunes   = 600
	maxFoodNameRunes  = 120
	maxCounterRunes   = 400
)

var leadingNumber = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`)

// Keys accepted for each field, canonical key first.
var (
	scoreKeys          = []string{"score", "puffiness_score", "retention_score"}
	focusAreaKeys      = []string{"focus_areas", "focusAreas", "areas"}
	summaryKeys        = []string{"analysis_summary", "summary", "analysisSummary"}
	foodNameKeys       = []string{"food_name", "foodName", "name", "food"}
	sodiumKeys         = []string{"sodium_mg", "sodiumMg", "sodium"}
	bloatRiskKeys      = []string{"bloat_risk", "bloatRisk", "risk"}
	counterMeasureKeys = []string{"counter_measure", "counterMeasure", "countermeasure", "advice"}
)

var bloatRiskAliases = map[string]models.BloatRisk{
	"low":       models.BloatRiskLow,
	"minimal":   models.BloatRiskLow,
	"none":      models.BloatRiskLow,
	"moderate":  models.BloatRiskModerate,
	"medium":    models.BloatRiskModerate,
	"mid":       models.BloatRiskModerate,
	"high":      models.BloatRiskHigh,
	"extreme":   models.BloatRiskExtreme,
	"very_high": models.BloatRiskExtreme,
	"severe":    models.BloatRiskExtreme,
}

var defaultSummaries = map[models.Locale]string{
	models.LocaleEN: "No detailed analysis was available for this photo.",
	models.LocaleES: "No hay un análisis detallado disponible para esta foto.",
	models.LocaleFR: "Aucune analyse détaillée n'est disponible pour cette photo.",
	models.LocaleDE: "Für dieses Foto ist keine detaillierte Analyse verfügbar.",
	models.LocaleJA: "この写真の詳細な分析は利用できません。",
	models.LocaleZH: "此照片暂无详细分析。",
}

var defaultFoodNames = map[models.Locale]string{
	models.LocaleEN: "Unknown food",
	models.LocaleES: "Alimento desconocido",
	models.LocaleFR: "Aliment inconnu",
	models.LocaleDE: "Unbekanntes Lebensmittel",
	models.LocaleJA: "不明な食品",
	models.LocaleZH: "未知食物",
}

var defaultCounterMeasures = map[models.Locale]string{
	models.LocaleEN: "Drink a glass of water and add a potassium-rich food such as a banana.",
	models.LocaleES: "Bebe un vaso de agua y añade un alimento rico en potasio, como un plátano.",
	models.LocaleFR: "Buvez un verre d'eau et ajoutez un aliment riche en potassium, comme une banane.",
	models.LocaleDE: "Trinken Sie ein Glas Wasser und essen Sie etwas Kaliumreiches, etwa eine Banane.",
	models.LocaleJA: "コップ一杯の水を飲み、バナナなどカリウムの多い食品を取り入れましょう。",
	models.LocaleZH: "喝一杯水，并搭配香蕉等富含钾的食物。",
}

// NormalizeFace coerces an arbitrary model object into a FaceAnalysisResult.
// It never fails; missing or invalid fields take defaults, and status and
// suggested protocol are always recomputed from the clamped score.
func NormalizeFace(raw map[string]any, locale models.Locale) models.FaceAnalysisResult {
	locale = normalizeLocale(locale)

	// A missing score reads as MinScore.
	score, _ := intField(raw, scoreKeys, models.MinScore, models.MaxScore)

	summary := truncateRunes(stringField(raw, summaryKeys), maxSummaryRunes)
	if summary == "" {
		correction("analysis_summary")
		summary = defaultSummaries[locale]
	}

	return models.FaceAnalysisResult{
		Locale:            locale,
		Score:             score,
		Status:            models.StatusForScore(score),
		FocusAreas:        focusAreas(raw),
		AnalysisSummary:   summary,
		SuggestedProtocol: models.ProtocolForScore(score),
	}
}

// NormalizeFood coerces an arbitrary model object into a FoodAnalysisResult.
func NormalizeFood(raw map[string]any, locale models.Locale) models.FoodAnalysisResult {
	locale = normalizeLocale(locale)

	name := truncateRunes(stringField(raw, foodNameKeys), maxFoodNameRunes)
	if name == "" {
		correction("food_name")
		name = defaultFoodNames[locale]
	}

	sodium, _ := intField(raw, sodiumKeys, 0, MaxSodiumMg)

	counter := truncateRunes(stringField(raw, counterMeasureKeys), maxCounterRunes)
	if counter == "" {
		correction("counter_measure")
		counter = defaultCounterMeasures[locale]
	}

	return models.FoodAnalysisResult{
		Locale:         locale,
		FoodName:       name,
		SodiumMg:       sodium,
		BloatRisk:      bloatRisk(raw),
		CounterMeasure: counter,
	}
}

// MatchBloatRisk maps a free-form risk label to the enumeration,
// case-insensitively. Unknown labels map to low.
func MatchBloatRisk(s string) (models.BloatRisk, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if r, ok := bloatRiskAliases[key]; ok {
		return r, true
	}
	return models.BloatRiskLow, false
}

func normalizeLocale(l models.Locale) models.Locale {
	if l.IsSupported() {
		return l
	}
	return models.LocaleEN
}

func correction(field string) {
	metrics.NormalizerCorrectionsTotal.WithLabelValues(field).Inc()
}

func lookup(raw map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// intField reads a numeric field, rounds half away from zero, then clamps.
// The bool is false when the field is absent or not numeric.
func intField(raw map[string]any, keys []string, lo, hi int) (int, bool) {
	field := keys[0]
	v, ok := lookup(raw, keys)
	if !ok {
		correction(field)
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		correction(field)
		return 0, false
	}

	r := math.Round(f)
	if r != f {
		correction(field)
	}
	switch {
	case r < float64(lo):
		correction(field)
		return lo, true
	case r > float64(hi):
		correction(field)
		return hi, true
	}
	return int(r), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		return parseNumeric(n)
	}
	return 0, false
}

// parseNumeric accepts strings like "450", "450mg", "1,200 mg" or "72%".
func parseNumeric(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func stringField(raw map[string]any, keys []string) string {
	v, ok := lookup(raw, keys)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return ""
}

// focusAreas trims, drops empty entries and duplicates, and caps the list.
// A single comma separated string is accepted as a list.
func focusAreas(raw map[string]any) []string {
	var items []string
	v, _ := lookup(raw, focusAreaKeys)
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	case []string:
		items = list
	case string:
		items = strings.Split(list, ",")
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s := truncateRunes(strings.TrimSpace(item), maxFocusAreaRunes)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == MaxFocusAreas {
			break
		}
	}
	if len(out) != len(items) {
		correction("focus_areas")
	}
	return out
}

func bloatRisk(raw map[string]any) models.BloatRisk {
	s := stringField(raw, bloatRiskKeys)
	r, ok := MatchBloatRisk(s)
	if !ok || string(r) != s {
		correction("bloat_risk")
	}
	return r
}

// truncateRunes cuts s to at most n runes and trims the result.
func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}

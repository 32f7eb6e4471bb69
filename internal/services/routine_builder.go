package services

import (
	"net/url"
	"strings"
	"time"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

// DefaultRoutineScore is used when the caller supplies no usable average score.
const DefaultRoutineScore = 50

// RoutineDateLayout is the wire format of DailyRoutine.Date and the date override.
const RoutineDateLayout = "2006-01-02"

var protocolTitles = map[models.Locale]map[models.Protocol]string{
	models.LocaleEN: {
		models.ProtocolDeepDrainage:     "Deep Lymphatic Drainage",
		models.ProtocolStandardDrainage: "Standard Drainage",
		models.ProtocolQuickSculpt:      "Quick Sculpt",
	},
	models.LocaleES: {
		models.ProtocolDeepDrainage:     "Drenaje linfático profundo",
		models.ProtocolStandardDrainage: "Drenaje estándar",
		models.ProtocolQuickSculpt:      "Esculpido rápido",
	},
	models.LocaleFR: {
		models.ProtocolDeepDrainage:     "Drainage lymphatique profond",
		models.ProtocolStandardDrainage: "Drainage standard",
		models.ProtocolQuickSculpt:      "Sculpt express",
	},
	models.LocaleDE: {
		models.ProtocolDeepDrainage:     "Tiefe Lymphdrainage",
		models.ProtocolStandardDrainage: "Standard-Drainage",
		models.ProtocolQuickSculpt:      "Schnelles Sculpting",
	},
	models.LocaleJA: {
		models.ProtocolDeepDrainage:     "ディープリンパドレナージュ",
		models.ProtocolStandardDrainage: "スタンダードドレナージュ",
		models.ProtocolQuickSculpt:      "クイックスカルプト",
	},
	models.LocaleZH: {
		models.ProtocolDeepDrainage:     "深层淋巴引流",
		models.ProtocolStandardDrainage: "标准引流",
		models.ProtocolQuickSculpt:      "快速塑形",
	},
}

var variantTitles = map[models.Locale]map[models.RoutineVariant]string{
	models.LocaleEN: {
		models.VariantRecoveryFlow: "Recovery Flow",
		models.VariantJawlineFocus: "Jawline Focus",
		models.VariantEyeDepuff:    "Eye De-puff",
		models.VariantNeckRelease:  "Neck Release",
		models.VariantCheekLift:    "Cheek Lift",
		models.VariantFullFaceFlow: "Full Face Flow",
		models.VariantWeekendReset: "Weekend Reset",
	},
	models.LocaleES: {
		models.VariantRecoveryFlow: "Flujo de recuperación",
		models.VariantJawlineFocus: "Enfoque en la mandíbula",
		models.VariantEyeDepuff:    "Desinflamar ojos",
		models.VariantNeckRelease:  "Liberación del cuello",
		models.VariantCheekLift:    "Elevación de mejillas",
		models.VariantFullFaceFlow: "Rostro completo",
		models.VariantWeekendReset: "Reinicio de fin de semana",
	},
	models.LocaleFR: {
		models.VariantRecoveryFlow: "Flux de récupération",
		models.VariantJawlineFocus: "Focus mâchoire",
		models.VariantEyeDepuff:    "Yeux dégonflés",
		models.VariantNeckRelease:  "Détente du cou",
		models.VariantCheekLift:    "Lift des joues",
		models.VariantFullFaceFlow: "Visage complet",
		models.VariantWeekendReset: "Reset du week-end",
	},
	models.LocaleDE: {
		models.VariantRecoveryFlow: "Erholungsflow",
		models.VariantJawlineFocus: "Fokus Kieferlinie",
		models.VariantEyeDepuff:    "Augen abschwellen",
		models.VariantNeckRelease:  "Nackenlösung",
		models.VariantCheekLift:    "Wangenlift",
		models.VariantFullFaceFlow: "Ganzes Gesicht",
		models.VariantWeekendReset: "Wochenend-Reset",
	},
	models.LocaleJA: {
		models.VariantRecoveryFlow: "リカバリーフロー",
		models.VariantJawlineFocus: "フェイスライン集中",
		models.VariantEyeDepuff:    "目元すっきり",
		models.VariantNeckRelease:  "首リリース",
		models.VariantCheekLift:    "頬リフト",
		models.VariantFullFaceFlow: "フルフェイスフロー",
		models.VariantWeekendReset: "週末リセット",
	},
	models.LocaleZH: {
		models.VariantRecoveryFlow: "恢复流程",
		models.VariantJawlineFocus: "下颌线专注",
		models.VariantEyeDepuff:    "眼部消肿",
		models.VariantNeckRelease:  "颈部放松",
		models.VariantCheekLift:    "提拉脸颊",
		models.VariantFullFaceFlow: "全脸流程",
		models.VariantWeekendReset: "周末重置",
	},
}

// BuildRoutine derives the daily routine for a score, date and locale. The
// weekday is read from date in date's own location; callers pass UTC dates.
func BuildRoutine(averageScore int, date time.Time, locale models.Locale, assetBaseURL string) models.DailyRoutine {
	locale = normalizeLocale(locale)
	score := clampScore(averageScore)
	protocol := models.ProtocolForScore(score)
	variant := models.WeekdayVariants[date.Weekday()]

	return models.DailyRoutine{
		Date:            date.Format(RoutineDateLayout),
		Locale:          locale,
		AverageScore:    score,
		Protocol:        protocol,
		Variant:         variant,
		Title:           variantTitles[locale][variant] + " · " + protocolTitles[locale][protocol],
		DurationMinutes: protocol.DurationMinutes(),
		VideoURL:        routineVideoURL(assetBaseURL, protocol, variant),
	}
}

// ParseRoutineDate parses a YYYY-MM-DD override as a UTC date.
func ParseRoutineDate(s string) (time.Time, error) {
	return time.ParseInLocation(RoutineDateLayout, strings.TrimSpace(s), time.UTC)
}

func clampScore(s int) int {
	return max(models.MinScore, min(models.MaxScore, s))
}

func routineVideoURL(base string, protocol models.Protocol, variant models.RoutineVariant) string {
	base = strings.TrimRight(base, "/")
	return base + "/" + url.PathEscape(string(protocol)) + "/" + url.PathEscape(string(variant)) + ".mp4"
}

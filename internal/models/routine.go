package models

// RoutineVariant is the weekday flavour of the daily routine.
type RoutineVariant string

const (
	VariantRecoveryFlow RoutineVariant = "recovery_flow"
	VariantJawlineFocus RoutineVariant = "jawline_focus"
	VariantEyeDepuff    RoutineVariant = "eye_depuff"
	VariantNeckRelease  RoutineVariant = "neck_release"
	VariantCheekLift    RoutineVariant = "cheek_lift"
	VariantFullFaceFlow RoutineVariant = "full_face_flow"
	VariantWeekendReset RoutineVariant = "weekend_reset"
)

// WeekdayVariants is indexed by time.Weekday, so Sunday comes first.
var WeekdayVariants = [7]RoutineVariant{
	VariantRecoveryFlow, // Sunday
	VariantJawlineFocus,
	VariantEyeDepuff,
	VariantNeckRelease,
	VariantCheekLift,
	VariantFullFaceFlow,
	VariantWeekendReset, // Saturday
}

// DailyRoutine is a deterministic routine derived from (score, date, locale).
type DailyRoutine struct {
	Date            string         `json:"date"` // YYYY-MM-DD
	Locale          Locale         `json:"locale"`
	AverageScore    int            `json:"average_score"`
	Protocol        Protocol       `json:"protocol"`
	Variant         RoutineVariant `json:"variant"`
	Title           string         `json:"title"`
	DurationMinutes int            `json:"duration_minutes"`
	VideoURL        string         `json:"video_url"`
}

package models

// RetentionStatus classifies facial fluid retention derived from a score.
type RetentionStatus string

const (
	RetentionLow      RetentionStatus = "low_retention"
	RetentionModerate RetentionStatus = "moderate_retention"
	RetentionHigh     RetentionStatus = "high_retention"
)

// Protocol is the drainage protocol suggested for a score.
type Protocol string

const (
	ProtocolDeepDrainage     Protocol = "lymphatic_deep_drainage"
	ProtocolStandardDrainage Protocol = "standard_drainage"
	ProtocolQuickSculpt      Protocol = "quick_sculpt"
)

// BloatRisk is the sodium-driven bloat risk of a food item.
type BloatRisk string

const (
	BloatRiskLow      BloatRisk = "low"
	BloatRiskModerate BloatRisk = "moderate"
	BloatRiskHigh     BloatRisk = "high"
	BloatRiskExtreme  BloatRisk = "extreme"
)

// Score thresholds shared by status, suggested protocol and routine protocol.
const (
	HighRetentionThreshold     = 70
	ModerateRetentionThreshold = 40

	MinScore = 0
	MaxScore = 100
)

// StatusForScore maps a normalized score to its retention status.
func StatusForScore(score int) RetentionStatus {
	switch {
	case score >= HighRetentionThreshold:
		return RetentionHigh
	case score >= ModerateRetentionThreshold:
		return RetentionModerate
	default:
		return RetentionLow
	}
}

// ProtocolForScore maps a normalized score to its drainage protocol.
func ProtocolForScore(score int) Protocol {
	switch {
	case score >= HighRetentionThreshold:
		return ProtocolDeepDrainage
	case score >= ModerateRetentionThreshold:
		return ProtocolStandardDrainage
	default:
		return ProtocolQuickSculpt
	}
}

// DurationMinutes returns the routine length for a protocol.
func (p Protocol) DurationMinutes() int {
	switch p {
	case ProtocolDeepDrainage:
		return 12
	case ProtocolStandardDrainage:
		return 9
	default:
		return 6
	}
}

// AnalysisRequest is the body accepted by both analysis endpoints.
// It lives only for the duration of one request.
type AnalysisRequest struct {
	ImageBase64 string         `json:"image_base64"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Locale      string         `json:"locale,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// FaceAnalysisResult is the normalized face puffiness analysis.
// Status and SuggestedProtocol are always derived from Score.
type FaceAnalysisResult struct {
	Locale            Locale          `json:"locale"`
	Score             int             `json:"score"`
	Status            RetentionStatus `json:"status"`
	FocusAreas        []string        `json:"focus_areas"`
	AnalysisSummary   string          `json:"analysis_summary"`
	SuggestedProtocol Protocol        `json:"suggested_protocol"`
}

// FoodAnalysisResult is the normalized food sodium analysis.
type FoodAnalysisResult struct {
	Locale         Locale    `json:"locale"`
	FoodName       string    `json:"food_name"`
	SodiumMg       int       `json:"sodium_mg"`
	BloatRisk      BloatRisk `json:"bloat_risk"`
	CounterMeasure string    `json:"counter_measure"`
}

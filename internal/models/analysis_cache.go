package models

import "time"

// AnalysisKind identifies which analysis produced a cached result.
type AnalysisKind string

const (
	AnalysisKindFace AnalysisKind = "face"
	AnalysisKindFood AnalysisKind = "food"
)

// AnalysisCache stores a normalized analysis result keyed by the hash of the
// model input (preprocessed image bytes and prompt), the analysis kind and
// the response locale.
// Image bytes are never stored.
type AnalysisCache struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	CacheKey   string       `gorm:"uniqueIndex;not null;size:64" json:"cache_key"` // SHA256 hex of kind|locale|input hash
	Kind       AnalysisKind `gorm:"not null;size:10;index" json:"kind"`
	Locale     Locale       `gorm:"not null;size:10" json:"locale"`
	ResultJSON string       `gorm:"not null" json:"result_json"`
	Model      string       `gorm:"size:64" json:"model"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiresAt  time.Time    `gorm:"index" json:"expires_at"`
	HitCount   int          `gorm:"default:0" json:"hit_count"`
}

func (AnalysisCache) TableName() string {
	return "analysis_caches"
}

// IsExpired returns true if the cache entry has expired
func (c *AnalysisCache) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lymphly/vps-ai-bridge/internal/metrics"
	"github.com/lymphly/vps-ai-bridge/internal/models"
)

// DefaultAnalysisCacheTTL is how long a normalized result stays reusable.
const DefaultAnalysisCacheTTL = 24 * time.Hour

// AnalysisCacheService stores normalized results keyed by input hash, kind
// and locale. A nil db disables the cache; every call becomes a miss or a no-op.
type AnalysisCacheService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewAnalysisCacheService creates a cache service
func NewAnalysisCacheService(db *gorm.DB, ttl time.Duration) *AnalysisCacheService {
	if ttl <= 0 {
		ttl = DefaultAnalysisCacheTTL
	}
	return &AnalysisCacheService{db: db, ttl: ttl, now: time.Now}
}

// Enabled reports whether a database is attached.
func (s *AnalysisCacheService) Enabled() bool {
	return s != nil && s.db != nil
}

// Get decodes a live cached result into out. Expired entries are deleted.
func (s *AnalysisCacheService) Get(kind models.AnalysisKind, locale models.Locale, inputHash string, out any) bool {
	if !s.Enabled() {
		return false
	}

	key := AnalysisCacheKey(kind, locale, inputHash)

	var cached models.AnalysisCache
	if err := s.db.Where("cache_key = ?", key).First(&cached).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Msg("analysis cache: lookup failed")
		}
		metrics.AnalysisCacheMisses.Inc()
		return false
	}

	if cached.IsExpired(s.now()) {
		s.db.Delete(&cached)
		metrics.AnalysisCacheMisses.Inc()
		return false
	}

	if err := json.Unmarshal([]byte(cached.ResultJSON), out); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("analysis cache: dropping undecodable entry")
		s.db.Delete(&cached)
		metrics.AnalysisCacheMisses.Inc()
		return false
	}

	_ = s.db.Model(&models.AnalysisCache{}).Where("id = ?", cached.ID).UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error

	metrics.AnalysisCacheHits.Inc()
	return true
}

// Set stores result, replacing any entry with the same key.
func (s *AnalysisCacheService) Set(kind models.AnalysisKind, locale models.Locale, inputHash, model string, result any) error {
	if !s.Enabled() {
		return nil
	}

	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	now := s.now()
	entry := models.AnalysisCache{
		CacheKey:   AnalysisCacheKey(kind, locale, inputHash),
		Kind:       kind,
		Locale:     locale,
		ResultJSON: string(body),
		Model:      model,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"result_json", "model", "created_at", "expires_at",
		}),
	}).Create(&entry).Error
}

// PurgeExpired deletes every expired entry and returns how many were removed.
func (s *AnalysisCacheService) PurgeExpired() (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	res := s.db.Where("expires_at <= ?", s.now()).Delete(&models.AnalysisCache{})
	return res.RowsAffected, res.Error
}

// StartPurge runs PurgeExpired every interval until ctx is cancelled.
func (s *AnalysisCacheService) StartPurge(ctx context.Context, interval time.Duration) {
	if !s.Enabled() || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired()
			if err != nil {
				log.Warn().Err(err).Msg("analysis cache: purge failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("purged", n).Msg("analysis cache: expired entries removed")
			}
		}
	}
}

// AnalysisCacheKey is the SHA256 hex of kind, locale and input hash.
func AnalysisCacheKey(kind models.AnalysisKind, locale models.Locale, inputHash string) string {
	sum := sha256.Sum256([]byte(string(kind) + "|" + string(locale) + "|" + inputHash))
	return hex.EncodeToString(sum[:])
}

// AnalysisInputHash identifies what the model sees for one request: the
// preprocessed image bytes and the user prompt built from timestamp and metadata.
func AnalysisInputHash(imageHash, userPrompt string) string {
	sum := sha256.Sum256([]byte(imageHash + "|" + userPrompt))
	return hex.EncodeToString(sum[:])
}

package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lymphly/vps-ai-bridge/internal/metrics"
)

// DefaultTempRetention is the reference retention window; it equals the
// default sweep interval.
const DefaultTempRetention = 15 * time.Minute

// TempReclaimer deletes temp store files older than the retention window on a
// fixed interval, independent of request handling.
type TempReclaimer struct {
	dir       string
	interval  time.Duration
	retention time.Duration
	dryRun    bool
	now       func() time.Time
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Scanned   int   `json:"scanned"`
	Reclaimed int   `json:"reclaimed"`
	Failed    int   `json:"failed"`
	Remaining int   `json:"remaining"`
	Bytes     int64 `json:"remaining_bytes"`
}

// NewTempReclaimer creates a reclaimer. A non-positive retention uses
// DefaultTempRetention; a non-positive interval uses the retention.
func NewTempReclaimer(dir string, interval, retention time.Duration) *TempReclaimer {
	if retention <= 0 {
		retention = DefaultTempRetention
	}
	if interval <= 0 {
		interval = retention
	}
	return &TempReclaimer{
		dir:       dir,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// SetDryRun makes sweeps report what they would delete without deleting.
func (r *TempReclaimer) SetDryRun(dryRun bool) {
	r.dryRun = dryRun
}

// Start runs sweeps until ctx is cancelled. It blocks; call it in a goroutine.
func (r *TempReclaimer) Start(ctx context.Context) {
	log.Info().
		Str("dir", r.dir).
		Dur("interval", r.interval).
		Dur("retention", r.retention).
		Msg("temp reclaimer started")

	// Leftovers from a previous process are reclaimed right away.
	if res := r.Sweep(); res.Reclaimed > 0 {
		log.Info().Int("reclaimed", res.Reclaimed).Msg("temp reclaimer: initial sweep finished")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("temp reclaimer stopping")
			return
		case <-ticker.C:
			res := r.Sweep()
			if res.Reclaimed > 0 || res.Failed > 0 {
				log.Info().
					Int("reclaimed", res.Reclaimed).
					Int("failed", res.Failed).
					Int("remaining", res.Remaining).
					Msg("temp reclaimer: sweep finished")
			}
		}
	}
}

// Sweep deletes regular files whose modification time is older than the
// retention window. Failures on one file never stop the sweep.
func (r *TempReclaimer) Sweep() SweepResult {
	var res SweepResult

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", r.dir).Msg("temp reclaimer: cannot list temp dir")
		}
		return res
	}

	cutoff := r.now().Add(-r.retention)

	for _, entry := range entries {
		// Skip directories, symlinks, sockets and anything else that is not a plain file.
		if !entry.Type().IsRegular() {
			continue
		}
		res.Scanned++

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info, or unreadable.
			if !os.IsNotExist(err) {
				res.Failed++
				log.Warn().Err(err).Str("file", entry.Name()).Msg("temp reclaimer: stat failed")
			}
			continue
		}

		if !info.ModTime().Before(cutoff) {
			res.Remaining++
			res.Bytes += info.Size()
			continue
		}

		if r.dryRun {
			res.Reclaimed++
			continue
		}

		if err := os.Remove(filepath.Join(r.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			res.Failed++
			res.Remaining++
			res.Bytes += info.Size()
			log.Warn().Err(err).Str("file", entry.Name()).Msg("temp reclaimer: delete failed")
			continue
		}
		res.Reclaimed++
	}

	if !r.dryRun {
		metrics.TempFilesReclaimedTotal.Add(float64(res.Reclaimed))
		metrics.RecordTempStore(res.Remaining, res.Bytes)
	}

	return res
}

// sweep-temp runs a single temp store sweep and exits. It is meant for cron or
// systemd timers on hosts where the server's own reclaimer is not enough.
//
// Usage: sweep-temp [-dir=<temp dir>] [-retention=15m] [-dry-run]
//
// Without -dir the TEMP_DIR setting of the server is used.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lymphly/vps-ai-bridge/internal/config"
	"github.com/lymphly/vps-ai-bridge/internal/logging"
	"github.com/lymphly/vps-ai-bridge/internal/services"
)

func main() {
	cfg := config.Load()

	dir := flag.String("dir", cfg.TempDir, "temp store directory")
	retention := flag.Duration("retention", cfg.TempRetention, "delete files older than this")
	dryRun := flag.Bool("dry-run", false, "report what would be deleted without deleting")
	logFormat := flag.String("log-format", "console", "log format: console or json")
	flag.Parse()

	logging.Setup(cfg.LogLevel, *logFormat)

	if *retention < time.Minute {
		log.Fatal().Dur("retention", *retention).Msg("retention below one minute would race in-flight requests")
	}
	if info, err := os.Stat(*dir); err != nil || !info.IsDir() {
		log.Fatal().Err(err).Str("dir", *dir).Msg("temp dir not found")
	}

	r := services.NewTempReclaimer(*dir, *retention, *retention)
	r.SetDryRun(*dryRun)
	res := r.Sweep()

	log.Info().
		Str("dir", *dir).
		Bool("dry_run", *dryRun).
		Int("scanned", res.Scanned).
		Int("reclaimed", res.Reclaimed).
		Int("failed", res.Failed).
		Int("remaining", res.Remaining).
		Msg("sweep finished")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal().Err(err).Msg("write result")
	}
	if res.Failed > 0 {
		os.Exit(1)
	}
}

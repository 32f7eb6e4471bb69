package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lymphly/vps-ai-bridge/internal/logging"
	"github.com/lymphly/vps-ai-bridge/internal/metrics"
)

// Pacer holds responses until a minimum wall-clock latency has elapsed since
// the request started, so cheap rejections and expensive model round trips
// take the same observable time.
type Pacer struct {
	minLatency time.Duration
	now        func() time.Time
}

// NewPacer creates a pacer. A non-positive minLatency disables pacing.
func NewPacer(minLatency time.Duration) *Pacer {
	return &Pacer{minLatency: minLatency, now: time.Now}
}

// MinLatency returns the configured floor.
func (p *Pacer) MinLatency() time.Duration {
	return p.minLatency
}

// Remaining is how long to wait before responding to a request that started at start.
func (p *Pacer) Remaining(start time.Time) time.Duration {
	if p.minLatency <= 0 {
		return 0
	}
	if left := p.minLatency - p.now().Sub(start); left > 0 {
		return left
	}
	return 0
}

// Wait sleeps for Remaining(start) or until ctx is done, and returns the delay added.
func (p *Pacer) Wait(ctx context.Context, start time.Time) time.Duration {
	d := p.Remaining(start)
	if d <= 0 {
		return 0
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return d
	case <-ctx.Done():
		// Client is gone; nobody observes the timing.
		return d - p.Remaining(start)
	}
}

// ResponsePacing buffers everything downstream handlers write, waits for the
// pacer, then releases the response. Success and error paths are paced alike,
// including a panic in a downstream handler, which becomes a paced 500.
func ResponsePacing(p *Pacer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := p.now()

		original := c.Writer
		buffered := &bufferedWriter{ResponseWriter: original, status: http.StatusOK}
		c.Writer = buffered
		defer func() { c.Writer = original }()

		runRecovering(c, buffered)

		delay := p.Wait(c.Request.Context(), start)
		metrics.PacingDelay.Observe(delay.Seconds())

		c.Writer = original
		buffered.release()
	}
}

// runRecovering runs the downstream chain and turns a panic into a buffered 500.
func runRecovering(c *gin.Context, buffered *bufferedWriter) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		if recovered == http.ErrAbortHandler {
			panic(recovered)
		}
		log.Error().
			Interface("panic", recovered).
			Str("request_id", logging.RequestID(c)).
			Str("route", c.FullPath()).
			Msg("recovered from panic")
		buffered.reset()
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}()
	c.Next()
}

// bufferedWriter holds status and body until release.
type bufferedWriter struct {
	gin.ResponseWriter
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	if code > 0 && !w.wroteHeader {
		w.status = code
	}
}

func (w *bufferedWriter) WriteHeaderNow() {
	w.wroteHeader = true
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.body.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.wroteHeader = true
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) Size() int {
	if !w.wroteHeader {
		return -1
	}
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.wroteHeader
}

// reset discards anything written so far.
func (w *bufferedWriter) reset() {
	w.body.Reset()
	w.status = http.StatusOK
	w.wroteHeader = false
}

// Flush is deferred until release.
func (w *bufferedWriter) Flush() {}

func (w *bufferedWriter) release() {
	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
	} else if w.wroteHeader {
		w.ResponseWriter.WriteHeaderNow()
	}
}

package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	resumeUploadedTotal  atomic.Uint64
	resumeCompletedTotal atomic.Uint64
	resumeFailedTotal    atomic.Uint64
	matchCompletedTotal  atomic.Uint64
	matchFailedTotal     atomic.Uint64

	enrichmentDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
	matchDuration      = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncResumeUploaded increments the uploaded counter.
func IncResumeUploaded() {
	resumeUploadedTotal.Add(1)
}

// IncResumeCompleted increments the completed counter.
func IncResumeCompleted() {
	resumeCompletedTotal.Add(1)
}

// IncResumeFailed increments the failed counter.
func IncResumeFailed() {
	resumeFailedTotal.Add(1)
}

// IncMatchCompleted increments the match completed counter.
func IncMatchCompleted() {
	matchCompletedTotal.Add(1)
}

// IncMatchFailed increments the match failed counter.
func IncMatchFailed() {
	matchFailedTotal.Add(1)
}

// ObserveEnrichmentDurationMs records an enrichment duration in milliseconds.
func ObserveEnrichmentDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	enrichmentDuration.Observe(value)
}

// ObserveMatchDurationMs records a match duration in milliseconds.
func ObserveMatchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	matchDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_uploaded_total", "Total resumes uploaded", resumeUploadedTotal.Load())
	writeCounter(&buf, "resume_completed_total", "Total resumes processed to completion", resumeCompletedTotal.Load())
	writeCounter(&buf, "resume_failed_total", "Total resumes ended in a failure status", resumeFailedTotal.Load())
	writeCounter(&buf, "match_completed_total", "Total match jobs completed", matchCompletedTotal.Load())
	writeCounter(&buf, "match_failed_total", "Total match jobs failed", matchFailedTotal.Load())
	writeHistogram(&buf, "enrichment_duration_ms", "Enrichment duration in milliseconds", enrichmentDuration.Snapshot())
	writeHistogram(&buf, "match_duration_ms", "Match duration in milliseconds", matchDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}

// Package metrics records watchdog pipeline metrics through a StatsD sink.
package metrics

import (
	"time"

	obserrors "github.com/marlinprotocol/oyster-watchdog/internal/observability/errors"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/statsd"
)

// Verification outcome tag values.
const (
	ResultOK           = "ok"
	ResultSkipped      = "skipped"
	ResultReachability = "reachability_failure"
	ResultEndpoint     = "endpoint_failure"
	ResultError        = "error"
)

// Recorder emits watcher and verification metrics. A nil Recorder or nil sink
// is a no-op, so callers never have to guard emission.
type Recorder struct {
	sink statsd.Sink
	tags map[string]string
}

// NewRecorder wraps a sink with base tags applied to every metric.
func NewRecorder(sink statsd.Sink, baseTags map[string]string) *Recorder {
	return &Recorder{sink: sink, tags: CloneTags(baseTags)}
}

// Tick records one watcher poll cycle and the number of events it dispatched.
func (r *Recorder) Tick(duration time.Duration, events int, err error) {
	if r == nil || r.sink == nil {
		return
	}

	extra := map[string]string{"result": ResultOK}
	if err != nil {
		extra["result"] = ResultError
		if class := obserrors.Classify(err); class != "" {
			extra["error_class"] = class
		}
	}

	tags := r.withTags(extra)
	r.sink.Count("watcher.tick", 1, tags)
	r.sink.Timing("watcher.tick.duration", duration, tags)
	if err == nil {
		r.sink.Count("watcher.events", int64(events), r.withTags(nil))
	}
}

// Watermark reports the last fully processed block height.
func (r *Recorder) Watermark(height uint64) {
	if r == nil || r.sink == nil {
		return
	}
	r.sink.Gauge("watcher.watermark", float64(height), r.withTags(nil))
}

// Verification records the outcome of one job verification attempt.
func (r *Recorder) Verification(result string, duration time.Duration) {
	if r == nil || r.sink == nil {
		return
	}
	tags := r.withTags(map[string]string{"result": result})
	r.sink.Count("verification.done", 1, tags)
	r.sink.Timing("verification.duration", duration, tags)
}

// FailureRecorded counts a failure row written to one of the failure tables.
func (r *Recorder) FailureRecorded(kind string) {
	if r == nil || r.sink == nil {
		return
	}
	r.sink.Count("verification.failure_recorded", 1, r.withTags(map[string]string{"kind": kind}))
}

func (r *Recorder) withTags(extra map[string]string) map[string]string {
	if len(r.tags) == 0 {
		return extra
	}
	merged := CloneTags(r.tags)
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// CloneTags returns a shallow copy so callers can mutate safely.
func CloneTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

// Package metrics emits structured metric events for generation units.
//
// Metrics are written as a single zerolog event per operation rather than
// pushed to a metrics backend — the service runs as a small container and the
// log stream is the only telemetry channel. A Recorder accumulates dimensions
// and values and flushes them as one "metric" event, so a log query can slice
// generation latency and retry counts by kind.
package metrics

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Recorder accumulates dimensions and values for a single metric flush.
// It is NOT safe for concurrent use from multiple goroutines; create one per
// operation.
type Recorder struct {
	operation  string
	dimensions map[string]string
	values     map[string]float64
	counts     map[string]int
}

// New creates a Recorder for the named operation (e.g. "scene-image").
func New(operation string) *Recorder {
	return &Recorder{
		operation:  operation,
		dimensions: make(map[string]string),
		values:     make(map[string]float64),
		counts:     make(map[string]int),
	}
}

// Dimension adds a string dimension such as the project folder or model ID.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Value records a numeric measurement such as a latency in milliseconds.
func (r *Recorder) Value(name string, v float64) *Recorder {
	r.values[name] = v
	return r
}

// Count increments a named counter by one.
func (r *Recorder) Count(name string) *Recorder {
	r.counts[name]++
	return r
}

// Add increments a named counter by n.
func (r *Recorder) Add(name string, n int) *Recorder {
	r.counts[name] += n
	return r
}

// Flush emits the accumulated metrics as one structured log event.
func (r *Recorder) Flush() {
	evt := log.Info().Str("metric", r.operation)

	if len(r.dimensions) > 0 {
		d := zerolog.Dict()
		for k, v := range r.dimensions {
			d = d.Str(k, v)
		}
		evt = evt.Dict("dimensions", d)
	}
	for k, v := range r.values {
		evt = evt.Float64(k, v)
	}
	for k, v := range r.counts {
		evt = evt.Int(k, v)
	}

	evt.Msg("metric")
}

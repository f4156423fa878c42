package analytics

import (
	"context"
	"errors"
)

var errTrackerStopped = errors.New("analytics tracker is not running")

// NopSink discards events. It backs ANALYTICS_SINK=none.
type NopSink struct{}

// WriteEvents implements Sink.
func (NopSink) WriteEvents(context.Context, []Event) error { return nil }

// Close implements Sink.
func (NopSink) Close() error { return nil }

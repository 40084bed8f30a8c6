// Package metrics provides render engine metrics collectors.
package metrics

import (
	"time"

	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// NopMetrics discards every measurement.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a collector that records nothing.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordPass does nothing.
func (n *NopMetrics) RecordPass(_ time.Duration, _ int) {}

// SetProgress does nothing.
func (n *NopMetrics) SetProgress(_ float64) {}

// IncrementPaletteRebuild does nothing.
func (n *NopMetrics) IncrementPaletteRebuild(_ string) {}

// RecordFrameSaved does nothing.
func (n *NopMetrics) RecordFrameSaved(_ time.Duration) {}

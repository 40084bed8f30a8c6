package types

import "time"

// MetricsCollector receives render engine measurements.
type MetricsCollector interface {
	// RecordPass records one finished render pass.
	RecordPass(elapsed time.Duration, rows int)

	// SetProgress records the last sampled progress percentage of the active pass.
	SetProgress(percent float64)

	// IncrementPaletteRebuild counts color table rebuilds by reason
	// ("buffer" or "random").
	IncrementPaletteRebuild(reason string)

	// RecordFrameSaved records one persisted capture frame.
	RecordFrameSaved(elapsed time.Duration)
}

package lantern

import (
	"time"

	"go.uber.org/zap"
)

// frameStats holds per-frame timing and batch sizes.
// Only logged when the loop runs with WithDebug(true).
type frameStats struct {
	frame        uint64
	tickTime     time.Duration
	applyTime    time.Duration
	commandCount int
	audioCount   int
	applied      uint64
	skipped      uint64
}

// debugLog writes frame stats at debug level.
func (l *FrameLoop) debugLog(stats frameStats) {
	if !l.debug {
		return
	}
	stats.applied = l.dispatcher.Applied()
	stats.skipped = l.dispatcher.Skipped()
	Logger().Debug("frame",
		zap.Uint64("frame", stats.frame),
		zap.Duration("tick", stats.tickTime),
		zap.Duration("apply", stats.applyTime),
		zap.Duration("total", stats.tickTime+stats.applyTime),
		zap.Int("commands", stats.commandCount),
		zap.Int("audioOps", stats.audioCount),
		zap.Uint64("appliedTotal", stats.applied),
		zap.Uint64("skippedTotal", stats.skipped),
	)
}

// Batches larger than this are reported once per frame in debug mode.
const debugMaxBatchSize = 10000

func debugCheckBatchSize(frame uint64, n int) {
	if n > debugMaxBatchSize {
		Logger().Warn("large command batch",
			zap.Uint64("frame", frame), zap.Int("commands", n), zap.Int("threshold", debugMaxBatchSize))
	}
}

package applog

import (
	"time"

	"github.com/google/uuid"
)

// Progress reports wall-clock-vs-simulated-time throughput for a headless
// run, tagged with a per-run id the way the teacher tags each asset with a
// uuid at load time.
type Progress struct {
	RunID   uuid.UUID
	logger  Logger
	started time.Time
}

// NewProgress starts a new run, generating a fresh RunID.
func NewProgress(logger Logger) *Progress {
	return &Progress{
		RunID:   uuid.New(),
		logger:  logger,
		started: time.Now(),
	}
}

// ReportFactor logs how many times slower than real time the run was:
// wall-clock seconds elapsed divided by simulated seconds produced.
// Factor: 1.00x means real-time; 2.00x means twice as slow as real time.
func (p *Progress) ReportFactor(simulatedSeconds float64) {
	if simulatedSeconds <= 0 {
		return
	}
	elapsed := time.Since(p.started).Seconds()
	factor := elapsed / simulatedSeconds
	p.logger.Infof("[run %s] Elapsed: %.3fs wall-clock, %.3fs simulated. Factor: %.2fx",
		p.RunID, elapsed, simulatedSeconds, factor)
}

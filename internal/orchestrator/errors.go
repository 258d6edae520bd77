package orchestrator

import "fmt"

// Orchestrator precondition errors.
var (
	ErrNotConfigured = fmt.Errorf("orchestrator: device has no circle type configured")
	ErrCentreNotSet  = fmt.Errorf("orchestrator: circle centre not set")
	ErrNotCalibrated = fmt.Errorf("orchestrator: device is not calibrated (centre and in-tolerance edge required)")
)

// InconsistentError reports that a paired read's slope distances disagree
// by more than the tolerance.
type InconsistentError struct {
	SD1, SD2, DiffMm float64
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("orchestrator: inconsistent paired read: sd1=%.1fmm sd2=%.1fmm diff=%.1fmm", e.SD1, e.SD2, e.DiffMm)
}

package ports

import (
	"time"

	"multiparty-params/internal/types"
)

// MetricsPort records resolution outcomes.
type MetricsPort interface {
	ObserveResolution(result types.ResolutionResult, elapsed time.Duration)
	Flush() error
}

package optimize

import (
	"github.com/homedger-dev/homedger/shared/domain"
	"github.com/homedger-dev/homedger/shared/logger"
)

// Outcome is the uniform result of running an optimizer under the fallback
// policy. It always carries a usable artifact: either the optimizer's output
// or, when Degraded, the original upload untouched with no thumbnail.
type Outcome struct {
	*domain.OptimizationResult
	Degraded bool
	Reason   error // cause of degradation, nil otherwise
}

// WithFallback runs fn and degrades to the original bytes on any error.
// Optimization is a best-effort enhancement, never a precondition for a
// successful upload, so nothing fn can do will fail the ingestion.
func WithFallback(original []byte, kind string, fn func() (*domain.OptimizationResult, error)) Outcome {
	res, err := fn()
	if err != nil {
		logger.Log.Warn("optimization failed, storing original upload",
			"kind", kind,
			"originalSize", len(original),
			"error", err,
		)
		size := int64(len(original))
		return Outcome{
			OptimizationResult: &domain.OptimizationResult{
				Data:          original,
				OriginalSize:  size,
				OptimizedSize: size,
			},
			Degraded: true,
			Reason:   err,
		}
	}
	return Outcome{OptimizationResult: res}
}

// Passthrough wraps bytes no optimizer applies to (unknown types, or PDFs
// when the conversion capability is off) in a non-degraded outcome.
func Passthrough(data []byte) Outcome {
	size := int64(len(data))
	return Outcome{
		OptimizationResult: &domain.OptimizationResult{
			Data:          data,
			OriginalSize:  size,
			OptimizedSize: size,
		},
	}
}

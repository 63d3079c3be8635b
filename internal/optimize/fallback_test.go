package optimize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homedger-dev/homedger/shared/domain"
)

func TestWithFallback(t *testing.T) {
	original := []byte("original upload bytes")

	t.Run("successful optimization passes through untouched", func(t *testing.T) {
		want := &domain.OptimizationResult{
			Data:          []byte("optimized"),
			OriginalSize:  int64(len(original)),
			OptimizedSize: 9,
			Format:        "jpeg",
		}

		outcome := WithFallback(original, "image", func() (*domain.OptimizationResult, error) {
			return want, nil
		})

		assert.False(t, outcome.Degraded)
		assert.NoError(t, outcome.Reason)
		assert.Same(t, want, outcome.OptimizationResult)
	})

	t.Run("error degrades to the original bytes with no thumbnail", func(t *testing.T) {
		cause := errors.New("decoder exploded")

		outcome := WithFallback(original, "image", func() (*domain.OptimizationResult, error) {
			return nil, cause
		})

		require.NotNil(t, outcome.OptimizationResult)
		assert.True(t, outcome.Degraded)
		assert.ErrorIs(t, outcome.Reason, cause)
		assert.Equal(t, original, outcome.Data)
		assert.Nil(t, outcome.Thumbnail)
		assert.Equal(t, int64(len(original)), outcome.OriginalSize)
		assert.Equal(t, outcome.OriginalSize, outcome.OptimizedSize)
		assert.Empty(t, outcome.Format)
	})
}

func TestPassthrough(t *testing.T) {
	data := []byte("%PDF-1.7 tiny")

	outcome := Passthrough(data)

	assert.False(t, outcome.Degraded)
	assert.NoError(t, outcome.Reason)
	assert.Equal(t, data, outcome.Data)
	assert.Nil(t, outcome.Thumbnail)
	assert.Equal(t, int64(len(data)), outcome.OriginalSize)
	assert.Equal(t, int64(len(data)), outcome.OptimizedSize)
}

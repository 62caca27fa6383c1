package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryErrorFormat(t *testing.T) {
	err := &SummaryError{
		Date:  "2024-06-01",
		Stage: StageGenerate,
		Err:   ErrGenerationFailed,
	}
	assert.Equal(t, "lifelog: 2024-06-01: generate: generation failed", err.Error())
}

func TestSummaryErrorUnwrap(t *testing.T) {
	underlying := fmt.Errorf("%w: model offline", ErrGenerationFailed)
	err := NewSummaryError("2024-06-01", StageGenerate, underlying)

	assert.ErrorIs(t, err, ErrGenerationFailed)

	var se *SummaryError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, "2024-06-01", se.Date)
	assert.Equal(t, StageGenerate, se.Stage)
}

func TestNewSummaryErrorNil(t *testing.T) {
	assert.Nil(t, NewSummaryError("2024-06-01", StageIndex, nil))
}

func TestClientErrorFormat(t *testing.T) {
	err := NewClientError("Validate", ErrInvalidConfig)
	assert.Equal(t, "lifelog: Validate: invalid configuration", err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewClientErrorNil(t *testing.T) {
	assert.Nil(t, NewClientError("Close", nil))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidConfig,
		ErrInvalidInput,
		ErrUpstreamUnavailable,
		ErrAmbiguousAggregation,
		ErrStorageOperation,
		ErrGenerationFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b))
		}
	}
}

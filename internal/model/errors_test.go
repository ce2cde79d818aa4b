package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsSentinel(t *testing.T) {
	err := NewError(GateBlocked, "component blocked")
	assert.True(t, errors.Is(err, ErrGateBlocked))
	assert.False(t, errors.Is(err, ErrDataMissing))
}

func TestWrapErrorUnwraps(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapError(StorageUnavailable, "insert failed", inner)
	assert.True(t, errors.Is(err, inner))
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.Contains(t, err.Error(), "insert failed")
}

func TestQualityScoreClamping(t *testing.T) {
	assert.Equal(t, 0.0, QualityScore(-1, 1, 1))
	assert.Equal(t, 1.0, QualityScore(2, 2, 2))
	assert.InDelta(t, 0.5, QualityScore(1, 1, 0.5), 1e-9)
}

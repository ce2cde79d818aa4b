package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BRK-B", NormalizeSymbol("brk.b"))
	assert.Equal(t, "AAPL", NormalizeSymbol("  aapl  "))
	assert.Equal(t, "BF-B", NormalizeSymbol("BF.B"))
}

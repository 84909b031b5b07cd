package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunIDs_InOrder(t *testing.T) {
	gen := NewFixedRunIDs("run-1", "run-2")
	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
}

func TestFixedRunIDs_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedRunIDs("only")
	gen.Generate()
	assert.PanicsWithValue(t, "FixedRunIDs: all run IDs exhausted", func() { gen.Generate() })
}

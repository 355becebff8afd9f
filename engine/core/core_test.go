package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertf(t *testing.T) {
	assert.NotPanics(t, func() { Assertf(true, "never shown") })
	assert.PanicsWithValue(t, "index 3 out of range", func() {
		Assertf(false, "index %d out of range", 3)
	})
}

func TestIdentifierAcquireNewIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := IdentifierAcquireNew()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

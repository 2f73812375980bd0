package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestResolve(t *testing.T) {
	seed := int64(7)
	got, rng := Resolve(&seed)
	assert.Equal(t, seed, got)
	assert.Equal(t, New(7).Uint64(), rng.Uint64())

	got, rng = Resolve(nil)
	assert.NotZero(t, got)
	assert.NotNil(t, rng)
}

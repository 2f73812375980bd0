package domino

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchOrientation(t *testing.T) {
	for _, d := range DoubleSix() {
		got, ok := d.MatchLeft(d.B)
		require.True(t, ok, "MatchLeft(%d) on %s", d.B, d)
		assert.Equal(t, d, got, "MatchLeft on own B pip should keep orientation")

		got, ok = d.MatchRight(d.A)
		require.True(t, ok)
		assert.Equal(t, d, got, "MatchRight on own A pip should keep orientation")

		if !d.IsDouble() {
			got, ok = d.MatchLeft(d.A)
			require.True(t, ok)
			assert.Equal(t, d.Reverse(), got)

			got, ok = d.MatchRight(d.B)
			require.True(t, ok)
			assert.Equal(t, d.Reverse(), got)
		}

		for target := 0; target <= MaxPip; target++ {
			if d.Matches(target) {
				continue
			}
			_, ok := d.MatchLeft(target)
			assert.False(t, ok, "%s should not match %d on the left", d, target)
			_, ok = d.MatchRight(target)
			assert.False(t, ok, "%s should not match %d on the right", d, target)
		}
	}
}

func TestMatchExamples(t *testing.T) {
	d := New(1, 2)

	got, ok := d.MatchLeft(2)
	require.True(t, ok)
	assert.Equal(t, New(1, 2), got)

	got, ok = d.MatchRight(2)
	require.True(t, ok)
	assert.Equal(t, New(2, 1), got)

	_, ok = d.MatchRight(3)
	assert.False(t, ok)
}

func TestMatchedSideTouchesTarget(t *testing.T) {
	d := New(3, 1)

	left, ok := d.MatchLeft(3)
	require.True(t, ok)
	assert.Equal(t, 3, left.B)
	assert.Equal(t, 1, left.A, "non-matching pip becomes the new open end")

	right, ok := d.MatchRight(1)
	require.True(t, ok)
	assert.Equal(t, 1, right.A)
	assert.Equal(t, 3, right.B)

	assert.Equal(t, New(3, 1), d, "matching must not change the original tile")
}

func TestDoubleSix(t *testing.T) {
	tiles := DoubleSix()
	require.Len(t, tiles, SetSize)

	seen := make(map[Domino]bool)
	for _, d := range tiles {
		require.True(t, d.Valid())
		key := d
		if key.A < key.B {
			key = key.Reverse()
		}
		assert.False(t, seen[key], "duplicate tile %s", d)
		seen[key] = true
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Domino
		wantErr bool
	}{
		{name: "simple", input: "3:4", want: New(3, 4)},
		{name: "double blank", input: "0:0", want: New(0, 0)},
		{name: "whitespace", input: " 6:1 ", want: New(6, 1)},
		{name: "missing separator", input: "34", wantErr: true},
		{name: "not a number", input: "a:4", wantErr: true},
		{name: "out of range", input: "7:1", wantErr: true},
		{name: "negative", input: "-1:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, MustParse(got.String()))
		})
	}
}

func TestSame(t *testing.T) {
	assert.True(t, New(1, 2).Same(New(2, 1)))
	assert.True(t, New(1, 2).Same(New(1, 2)))
	assert.False(t, New(1, 2).Same(New(1, 3)))
}

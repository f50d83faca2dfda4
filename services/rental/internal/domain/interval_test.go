package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return base.AddDate(0, 0, n) }

func iv(a, b int) Interval { return Interval{Start: day(a), End: day(b)} }

func TestInterval_Overlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{name: "touching end to start", a: iv(0, 5), b: iv(5, 10), want: false},
		{name: "touching start to end", a: iv(5, 10), b: iv(0, 5), want: false},
		{name: "disjoint", a: iv(0, 2), b: iv(4, 6), want: false},
		{name: "partial", a: iv(0, 5), b: iv(4, 8), want: true},
		{name: "contained", a: iv(0, 10), b: iv(3, 4), want: true},
		{name: "identical", a: iv(1, 3), b: iv(1, 3), want: true},
		{name: "one nanosecond shared", a: Interval{day(0), day(5).Add(time.Nanosecond)}, b: iv(5, 6), want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
		})
	}
}

func TestInterval_OverlapsIsSymmetric(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		s1, s2 := r.Intn(60), r.Intn(60)
		a := iv(s1, s1+1+r.Intn(10))
		b := iv(s2, s2+1+r.Intn(10))
		require.Equal(t, a.Overlaps(b), b.Overlaps(a), "a=%v b=%v", a, b)
	}
}

func TestNewInterval(t *testing.T) {
	t.Parallel()

	_, err := NewInterval(day(3), day(3))
	assert.ErrorIs(t, err, ErrEmptyInterval)

	_, err = NewInterval(day(4), day(3))
	assert.ErrorIs(t, err, ErrEmptyInterval)

	loc := time.FixedZone("UTC+3", 3*3600)
	got, err := NewInterval(day(1).In(loc).Add(123*time.Nanosecond), day(2).In(loc))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Start.Location())
	assert.True(t, got.Start.Equal(day(1)))
	assert.True(t, got.End.Equal(day(2)))
}

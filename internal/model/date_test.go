package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	now := time.Now()

	// time.Time and pointer forms
	secs, ok := NormalizeDate(now)
	assert.True(t, ok)
	assert.Equal(t, now.Unix(), secs)

	secs, ok = NormalizeDate(&now)
	assert.True(t, ok)
	assert.Equal(t, now.Unix(), secs)

	// Zero times are unusable
	_, ok = NormalizeDate(time.Time{})
	assert.False(t, ok)
	_, ok = NormalizeDate((*time.Time)(nil))
	assert.False(t, ok)

	// Firestore timestamp decoded as a map
	secs, ok = NormalizeDate(map[string]any{"seconds": float64(1767225600)})
	assert.True(t, ok)
	assert.Equal(t, int64(1767225600), secs)

	// Epoch numbers
	secs, ok = NormalizeDate(int64(1767225600))
	assert.True(t, ok)
	assert.Equal(t, int64(1767225600), secs)

	// String layouts
	secs, ok = NormalizeDate("2026-01-12")
	assert.True(t, ok)
	assert.Equal(t, 2026, time.Unix(secs, 0).Year())

	secs, ok = NormalizeDate("12/01/2026")
	assert.True(t, ok)
	assert.Equal(t, 2026, time.Unix(secs, 0).Year())

	// Free text is not a date
	_, ok = NormalizeDate("12 Januari 2026")
	assert.False(t, ok)
	_, ok = NormalizeDate(nil)
	assert.False(t, ok)
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 2026, ToInt(2026))
	assert.Equal(t, 2026, ToInt(int64(2026)))
	assert.Equal(t, 2026, ToInt(float64(2026)))
	assert.Equal(t, 2026, ToInt(" 2026 "))
	assert.Equal(t, 0, ToInt("not a number"))
	assert.Equal(t, 0, ToInt(nil))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "45", ToString(45))
	assert.Equal(t, "45", ToString(int64(45)))
	assert.Equal(t, "45", ToString(float64(45)))
	assert.Equal(t, "45.5", ToString(45.5))
	assert.Equal(t, "45", ToString([]byte("45")))
	assert.Equal(t, "", ToString(nil))
}

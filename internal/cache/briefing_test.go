package cache

import (
	"testing"
	"time"

	models "flightguard/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var briefingTime = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

func TestGetReturnsCachedWithinTTL(t *testing.T) {
	c := New(time.Hour)
	key := NewKey("KAUS", briefingTime, models.LevelStudentPilot)
	c.Put(key, "Winds light and variable.")

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "Winds light and variable.", got)
}

func TestGetMissesDifferentKeyComponents(t *testing.T) {
	c := New(time.Hour)
	c.Put(NewKey("KAUS", briefingTime, models.LevelStudentPilot), "text")

	_, ok := c.Get(NewKey("KAUS", briefingTime, models.LevelPrivatePilot))
	assert.False(t, ok)
	_, ok = c.Get(NewKey("KHOU", briefingTime, models.LevelStudentPilot))
	assert.False(t, ok)
	_, ok = c.Get(NewKey("KAUS", briefingTime.Add(2*time.Hour), models.LevelStudentPilot))
	assert.False(t, ok)
}

func TestExpiredEntryDroppedOnRead(t *testing.T) {
	now := briefingTime
	c := New(time.Hour)
	c.nowFn = func() time.Time { return now }

	key := NewKey("KAUS", briefingTime, models.LevelStudentPilot)
	c.Put(key, "text")

	now = now.Add(59 * time.Minute)
	_, ok := c.Get(key)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestInvalidateDropsOnlyMatchingLocation(t *testing.T) {
	c := New(time.Hour)
	c.Put(NewKey("KAUS", briefingTime, models.LevelStudentPilot), "a")
	c.Put(NewKey("KAUS", briefingTime, models.LevelPrivatePilot), "b")
	c.Put(NewKey("KHOU", briefingTime, models.LevelStudentPilot), "c")

	dropped := c.Invalidate("KAUS")
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(NewKey("KHOU", briefingTime, models.LevelStudentPilot))
	assert.True(t, ok)
}

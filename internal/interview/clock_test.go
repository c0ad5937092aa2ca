package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_FiresDueTimersInOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)
	var fired []string

	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	late := c.AfterFunc(10*time.Second, func() { fired = append(fired, "late") })
	assert.Equal(t, 3, c.Pending())

	c.Advance(3 * time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, start.Add(3*time.Second), c.Now())

	assert.True(t, late.Stop())
	assert.False(t, late.Stop())
	c.Advance(time.Minute)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeClock_StopAfterFire(t *testing.T) {
	c := NewFakeClock(time.Time{})
	timer := c.AfterFunc(0, func() {})
	c.Advance(0)
	assert.False(t, timer.Stop())
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	opts := DefaultOptions()
	opts.YearsExperience = -1
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.AdvisorTimeout = 0
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.MaxSilentPrompts = -1
	assert.Error(t, opts.Validate())
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, userMessage(&ListenError{Kind: ListenErrAborted}))
	assert.Empty(t, userMessage(&ListenError{Kind: ListenErrNetwork}))
	assert.Contains(t, userMessage(&ListenError{Kind: ListenErrCapture}), "microphone is unavailable")
	assert.Contains(t, userMessage(&SpeakError{}), "Audio playback failed")
}

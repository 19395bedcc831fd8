package period

import (
	"errors"
	"testing"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod("2024-06", day(2024, 6, 1), day(2024, 6, 30))
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, p.Status)
	assert.Nil(t, p.LockDate)

	_, err = NewPeriod("bad", day(2024, 6, 30), day(2024, 6, 1))
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = NewPeriod("", day(2024, 6, 1), day(2024, 6, 30))
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestPeriod_Overlaps(t *testing.T) {
	june, _ := NewPeriod("june", day(2024, 6, 1), day(2024, 6, 30))
	july, _ := NewPeriod("july", day(2024, 7, 1), day(2024, 7, 31))
	q2, _ := NewPeriod("q2", day(2024, 4, 1), day(2024, 6, 30))
	lastDay, _ := NewPeriod("edge", day(2024, 6, 30), day(2024, 7, 2))

	assert.False(t, june.Overlaps(july))
	assert.True(t, june.Overlaps(q2))
	assert.True(t, june.Overlaps(lastDay))
	assert.True(t, july.Overlaps(lastDay))
}

func TestPeriod_Contains(t *testing.T) {
	june, _ := NewPeriod("june", day(2024, 6, 1), day(2024, 6, 30))
	assert.True(t, june.Contains(time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, june.Contains(day(2024, 7, 1)))
}

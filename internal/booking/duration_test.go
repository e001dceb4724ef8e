package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/table-reservation/internal/model"
)

func TestResolveDuration(t *testing.T) {
	cfg := &model.ServicePeriods{BreakfastMin: 40, LunchMin: 75, DinnerMin: 120}

	assert.Equal(t, 40, ResolveDuration("06:00", cfg))
	assert.Equal(t, 40, ResolveDuration("10:59", cfg))
	assert.Equal(t, 75, ResolveDuration("11:00", cfg), "boundary hour belongs to the later period")
	assert.Equal(t, 75, ResolveDuration("14:59", cfg))
	assert.Equal(t, 120, ResolveDuration("15:00", cfg))
	assert.Equal(t, 120, ResolveDuration("23:30", cfg))
	assert.Equal(t, 120, ResolveDuration("05:59", cfg), "before breakfast counts as dinner")
	assert.Equal(t, 120, ResolveDuration("garbage", cfg))
}

func TestResolveDurationDefaults(t *testing.T) {
	for _, clock := range []string{"06:00", "11:00", "15:00", "bad"} {
		assert.Equal(t, DefaultDurationMin, ResolveDuration(clock, nil), clock)
	}

	empty := &model.ServicePeriods{}
	assert.Equal(t, 45, ResolveDuration("08:00", empty))
	assert.Equal(t, 60, ResolveDuration("12:00", empty))
	assert.Equal(t, 90, ResolveDuration("20:00", empty))

	partial := &model.ServicePeriods{LunchMin: 50}
	assert.Equal(t, 45, ResolveDuration("07:30", partial))
	assert.Equal(t, 50, ResolveDuration("13:00", partial))
}

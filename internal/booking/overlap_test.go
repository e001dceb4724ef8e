package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	const t0 = 19 * 60
	cases := []struct {
		name           string
		sa, da, sb, db int
		want           bool
	}{
		{"adjacent after", t0, 90, t0 + 90, 90, false},
		{"adjacent before", t0 + 90, 90, t0, 90, false},
		{"one minute overlap", t0, 90, t0 + 89, 90, true},
		{"identical", t0, 90, t0, 90, true},
		{"contained", t0, 120, t0 + 30, 30, true},
		{"containing", t0 + 30, 30, t0, 120, true},
		{"disjoint", 8 * 60, 45, 12 * 60, 60, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.sa, tc.da, tc.sb, tc.db))
			assert.Equal(t, tc.want, Overlaps(tc.sb, tc.db, tc.sa, tc.da), "overlap must be symmetric")
		})
	}
}

func TestOverlapsSymmetric(t *testing.T) {
	for sa := 0; sa < 240; sa += 15 {
		for sb := 0; sb < 240; sb += 20 {
			for _, d := range []int{1, 30, 45, 90} {
				require.Equal(t, Overlaps(sa, d, sb, 60), Overlaps(sb, 60, sa, d), "sa=%d sb=%d d=%d", sa, sb, d)
			}
		}
	}
}

func TestParseClock(t *testing.T) {
	m, err := parseClock("19:30")
	require.NoError(t, err)
	assert.Equal(t, 19*60+30, m)

	m, err = parseClock("07:05:00")
	require.NoError(t, err)
	assert.Equal(t, 7*60+5, m)

	for _, bad := range []string{"", "7pm", "25:00", "19-30"} {
		_, err := parseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestValidateWindow(t *testing.T) {
	start, err := validateWindow("2025-06-01", "12:15", 60)
	require.NoError(t, err)
	assert.Equal(t, 12*60+15, start)

	_, err = validateWindow("01/06/2025", "12:15", 60)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = validateWindow("2025-06-01", "12:15", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

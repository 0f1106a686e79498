package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsOfResolve(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	now := time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)
	instant := time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		asOf    AsOf
		loc     *time.Location
		want    time.Time
		wantDay string
	}{
		{"zero is now", AsOf{}, newYork, now, "2024-03-12"},
		{"instant west of UTC", At(instant), newYork, instant, "2024-03-09"},
		{"date west of UTC", OnDate(2024, time.March, 10), newYork, time.Date(2024, 3, 10, 0, 0, 0, 0, newYork), "2024-03-10"},
		{"date east of UTC", OnDate(2024, time.March, 10), tokyo, time.Date(2024, 3, 10, 0, 0, 0, 0, tokyo), "2024-03-10"},
		{"date without zone", OnDate(2024, time.March, 10), nil, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "2024-03-10"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.asOf.Resolve(now, tc.loc)
			assert.True(t, tc.want.Equal(got), "got %s", got)

			loc := tc.loc
			if loc == nil {
				loc = time.UTC
			}
			assert.Equal(t, tc.wantDay, got.In(loc).Format(DateLayout))
		})
	}
}

func TestAsOfString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "now", AsOf{}.String())
	assert.Equal(t, "2024-03-10", OnDate(2024, time.March, 10).String())
	assert.Equal(t, "2024-03-10T03:00:00Z", At(time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)).String())
	assert.True(t, OnDate(2024, time.March, 10).DateOnly())
	assert.False(t, At(time.Now()).DateOnly())
	assert.True(t, AsOf{}.IsZero())
}

package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"ordinal date", "3rd Nov, 2024", time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC), true},
		{"ordinal first", "1st Jan, 2023", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"ordinal full month", "22nd September, 2021", time.Date(2021, 9, 22, 0, 0, 0, 0, time.UTC), true},
		{"iso datetime", "2022-07-28T21:41:27Z", time.Date(2022, 7, 28, 0, 0, 0, 0, time.UTC), true},
		{"iso date", "2022-07-28", time.Date(2022, 7, 28, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
		{"bad ordinal", "Nov, 2024", time.Time{}, false},
		{"bad month", "3rd Xyz, 2024", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseOK(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			assert.True(t, tt.want.Equal(Parse(tt.in)))
		})
	}
}

func TestParse_EquivalentFormats(t *testing.T) {
	assert.True(t, Parse("3rd Nov, 2024").Equal(Parse("2024-11-03")))
	assert.True(t, Parse("2022-07-28T21:41:27Z").Equal(Parse("2022-07-28")))
}

func TestParse_UnparseableSortsOldest(t *testing.T) {
	assert.True(t, Parse("not a date").Before(Parse("1900-01-01")))
	assert.Equal(t, -1, Compare("???", "1st Jan, 1970"))
	assert.Equal(t, 0, Compare("3rd Nov, 2024", "2024-11-03T10:00:00Z"))
	assert.Equal(t, 1, Compare("2024-11-04", "3rd Nov, 2024"))
}

func TestTitleYears(t *testing.T) {
	assert.Equal(t, []int{2011}, TitleYears("India vs Sri Lanka World Cup Final 2011"))
	assert.Equal(t, []int{1983, 2023}, TitleYears("From 1983 to 2023: the journey"))
	assert.Empty(t, TitleYears("IND vs AUS 3rd T20I Highlights"))
	assert.Empty(t, TitleYears("Scored 12345 runs"))
}

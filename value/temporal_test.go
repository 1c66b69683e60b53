package value

import (
	"testing"
	"time"

	"github.com/hupe1980/ddbgo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemporal_Render(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want string
	}{
		{"date", NewDate(2024, 3, 9), "2024.03.09"},
		{"month", NewMonth(2024, 3), "2024.03M"},
		{"time", NewTime(13, 30, 15, 7), "13:30:15.007"},
		{"minute", NewMinute(9, 5), "09:05m"},
		{"second", NewSecond(23, 59, 59), "23:59:59"},
		{"datetime", NewDateTime(2024, 3, 9, 1, 2, 3), "2024.03.09T01:02:03"},
		{"datehour", NewDateHour(2024, 3, 9, 17), "2024.03.09T17"},
		{"timestamp", NewTimestamp(2024, 3, 9, 1, 2, 3, 456), "2024.03.09T01:02:03.456"},
		{"nanotime", NewNanoTime(1, 2, 3, 4), "01:02:03.000000004"},
		{"nanotimestamp", NewNanoTimestamp(1969, 12, 31, 23, 59, 59, 1), "1969.12.31T23:59:59.000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())

			back, err := Parse(tt.v.Type(), tt.want)
			require.NoError(t, err)
			assert.True(t, back.Equal(tt.v), "parsed %s", back)
		})
	}
}

func TestTemporal_RawEncoding(t *testing.T) {
	assert.Equal(t, int32(0), NewDate(1970, 1, 1).Int())
	assert.Equal(t, int32(-1), NewDate(1969, 12, 31).Int())
	assert.Equal(t, int32(2024*12+2), NewMonth(2024, 3).Int())
	assert.Equal(t, int32(3_600_000), NewTime(1, 0, 0, 0).Int())
	assert.Equal(t, int64(1_000), NewTimestamp(1970, 1, 1, 0, 0, 1, 0).Long())
}

func TestTemporal_Invalid(t *testing.T) {
	assert.True(t, NewDate(2023, 2, 29).IsNull())
	assert.True(t, NewMonth(2024, 13).IsNull())
	assert.True(t, NewTime(24, 0, 0, 0).IsNull())
	assert.True(t, NewTimestamp(2024, 1, 1, 0, 0, 0, 1000).IsNull())

	_, err := Parse(model.TypeDate, "2024-03-09")
	assert.ErrorIs(t, err, ErrInvalidLiteral)

	v, err := Parse(model.TypeDate, "")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestTemporal_TimeConversion(t *testing.T) {
	ts := time.Date(2021, 6, 7, 8, 9, 10, 11_000_000, time.UTC)
	v := FromTime(model.TypeTimestamp, ts)
	got, ok := v.Time()
	require.True(t, ok)
	assert.True(t, ts.Equal(got))

	_, ok = NewScalar(model.TypeDate).Time()
	assert.False(t, ok)
	_, ok = NewInt(1).Time()
	assert.False(t, ok)

	assert.Greater(t, EpochMillis(), int64(0))
}

package cql

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeFromNanoseconds(t *testing.T) {
	for _, ns := range []int64{0, 1, 3600 * int64(time.Second), NanosecondsPerDay - 1} {
		tm, err := TimeFromNanoseconds(ns)
		require.NoError(t, err)
		assert.Equal(t, ns, tm.Nanoseconds())
		assert.Equal(t, strconv.FormatInt(ns, 10), tm.String())
	}

	for _, ns := range []int64{-1, NanosecondsPerDay, NanosecondsPerDay * 2} {
		_, err := TimeFromNanoseconds(ns)
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err))
		assert.Contains(t, err.Error(), strconv.FormatInt(ns, 10))
	}
}

func TestParseTime(t *testing.T) {
	tm, err := ParseTime("3723000000004")
	require.NoError(t, err)
	assert.Equal(t, "01:02:03.000000004", tm.Clock())

	tm, err = ParseTime("01:02:03.5")
	require.NoError(t, err)
	assert.Equal(t, int64(3723500000000), tm.Nanoseconds())

	for _, bad := range []string{"hello", "25:00:00", "1:2:3", "01:02:03.", "86400000000000"} {
		_, err := ParseTime(bad)
		assert.True(t, IsInvalidArgument(err), bad)
	}
}

func TestTimeFromDateTime(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	tm := TimeFromDateTime(time.Date(2020, 1, 1, 13, 14, 15, 16, loc))
	assert.Equal(t, int64(13*3600+14*60+15)*int64(time.Second)+16, tm.Nanoseconds())
	assert.Equal(t, int64(13*3600+14*60+15), tm.Seconds())
}

func TestTimestampFromParts(t *testing.T) {
	ts, err := TimestampFromParts(1425691864, 123456)
	require.NoError(t, err)
	assert.Equal(t, int64(1425691864123), ts.Milliseconds())
	assert.Equal(t, int64(1425691864), ts.Time())
	assert.Equal(t, int64(123000), ts.Microseconds())
	assert.Equal(t, "1425691864123", ts.String())

	_, err = TimestampFromParts(0, 1000000)
	assert.True(t, IsInvalidArgument(err))
	_, err = TimestampFromParts(0, -1)
	assert.True(t, IsInvalidArgument(err))
}

func TestTimestampMicrotime(t *testing.T) {
	for _, ms := range []int64{0, 1, 999, 1425691864123, -1, -1001} {
		ts := TimestampFromMilliseconds(ms)
		str := ts.Microtime()
		parts := strings.Split(str, " ")
		require.Len(t, parts, 2, str)
		require.Len(t, strings.SplitN(parts[0], ".", 2)[1], 8, str)

		frac, err := strconv.ParseFloat(parts[0], 64)
		require.NoError(t, err)
		sec, err := strconv.ParseInt(parts[1], 10, 64)
		require.NoError(t, err)

		assert.True(t, frac >= 0 && frac < 1, str)
		assert.InDelta(t, ts.MicrotimeFloat(), float64(sec)+frac, 0.0005, str)
	}

	ts := TimestampFromMilliseconds(1425691864123)
	assert.Equal(t, "0.12300000 1425691864", ts.Microtime())
	assert.Equal(t, 1425691864.123, ts.MicrotimeFloat())
}

func TestTimestampToTime(t *testing.T) {
	now := time.Now()
	ts := TimestampFromTime(now)
	assert.Equal(t, now.UnixMilli(), ts.ToTime().UnixMilli())
	assert.Equal(t, time.Local, ts.ToTime().Location())

	parsed, err := ParseTimestamp(ts.String())
	require.NoError(t, err)
	assert.Equal(t, ts, parsed)

	_, err = ParseTimestamp("yesterday")
	assert.True(t, IsInvalidArgument(err))
}

package value

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/ddbgo/model"
)

const (
	layoutDate          = "2006.01.02"
	layoutTime          = "15:04:05.000"
	layoutSecond        = "15:04:05"
	layoutDateTime      = "2006.01.02T15:04:05"
	layoutDateHour      = "2006.01.02T15"
	layoutTimestamp     = "2006.01.02T15:04:05.000"
	layoutNanoTime      = "15:04:05.000000000"
	layoutNanoTimestamp = "2006.01.02T15:04:05.000000000"

	secondsPerDay = 86400
)

// ErrInvalidLiteral is returned by Parse for text that does not denote a
// value of the requested type.
var ErrInvalidLiteral = errors.New("value: invalid literal")

func validClock(h, m, s int) bool {
	return h >= 0 && h < 24 && m >= 0 && m < 60 && s >= 0 && s < 60
}

func civil(y, mo, d int) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	return t, t.Day() == d && int(t.Month()) == mo
}

// NewTemporal returns a scalar of a temporal type from its raw encoding.
func NewTemporal(typ model.Type, raw int64) *Value {
	if typ.Category() != model.CategoryTemporal {
		return NewScalar(typ)
	}
	v := NewScalar(typ)
	v.vec.col.setInt64(0, raw)
	return v
}

// FromTime converts t (interpreted in UTC) into a temporal scalar of typ.
func FromTime(typ model.Type, t time.Time) *Value {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	sinceMidnight := t.Sub(midnight)
	var raw int64
	switch typ {
	case model.TypeDate:
		raw = floorDiv(midnight.Unix(), secondsPerDay)
	case model.TypeMonth:
		raw = int64(t.Year())*12 + int64(t.Month()) - 1
	case model.TypeTime:
		raw = sinceMidnight.Milliseconds()
	case model.TypeMinute:
		raw = int64(sinceMidnight / time.Minute)
	case model.TypeSecond:
		raw = int64(sinceMidnight / time.Second)
	case model.TypeDateTime:
		raw = t.Unix()
	case model.TypeDateHour:
		raw = floorDiv(t.Unix(), 3600)
	case model.TypeTimestamp:
		raw = t.UnixMilli()
	case model.TypeNanoTime:
		raw = sinceMidnight.Nanoseconds()
	case model.TypeNanoTimestamp:
		raw = t.UnixNano()
	default:
		return NewScalar(typ)
	}
	return NewTemporal(typ, raw)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// NewDate returns a DATE scalar, or a null DATE for an invalid calendar day.
func NewDate(y, mo, d int) *Value {
	t, ok := civil(y, mo, d)
	if !ok {
		return NewScalar(model.TypeDate)
	}
	return FromTime(model.TypeDate, t)
}

// NewMonth returns a MONTH scalar.
func NewMonth(y, mo int) *Value {
	if mo < 1 || mo > 12 {
		return NewScalar(model.TypeMonth)
	}
	return NewTemporal(model.TypeMonth, int64(y)*12+int64(mo)-1)
}

// NewTime returns a TIME scalar (millisecond precision).
func NewTime(h, m, s, ms int) *Value {
	if !validClock(h, m, s) || ms < 0 || ms > 999 {
		return NewScalar(model.TypeTime)
	}
	return NewTemporal(model.TypeTime, int64(((h*60+m)*60+s)*1000+ms))
}

// NewMinute returns a MINUTE scalar.
func NewMinute(h, m int) *Value {
	if !validClock(h, m, 0) {
		return NewScalar(model.TypeMinute)
	}
	return NewTemporal(model.TypeMinute, int64(h*60+m))
}

// NewSecond returns a SECOND scalar.
func NewSecond(h, m, s int) *Value {
	if !validClock(h, m, s) {
		return NewScalar(model.TypeSecond)
	}
	return NewTemporal(model.TypeSecond, int64((h*60+m)*60+s))
}

// NewNanoTime returns a NANOTIME scalar.
func NewNanoTime(h, m, s, ns int) *Value {
	if !validClock(h, m, s) || ns < 0 || ns >= int(time.Second) {
		return NewScalar(model.TypeNanoTime)
	}
	return NewTemporal(model.TypeNanoTime, int64((h*60+m)*60+s)*int64(time.Second)+int64(ns))
}

func dateClock(typ model.Type, y, mo, d, h, mi, s, ns int) *Value {
	day, ok := civil(y, mo, d)
	if !ok || !validClock(h, mi, s) || ns < 0 || ns >= int(time.Second) {
		return NewScalar(typ)
	}
	t := day.Add(time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(ns))
	return FromTime(typ, t)
}

// NewDateTime returns a DATETIME scalar (second precision).
func NewDateTime(y, mo, d, h, mi, s int) *Value {
	return dateClock(model.TypeDateTime, y, mo, d, h, mi, s, 0)
}

// NewDateHour returns a DATEHOUR scalar.
func NewDateHour(y, mo, d, h int) *Value {
	return dateClock(model.TypeDateHour, y, mo, d, h, 0, 0, 0)
}

// NewTimestamp returns a TIMESTAMP scalar (millisecond precision).
func NewTimestamp(y, mo, d, h, mi, s, ms int) *Value {
	if ms < 0 || ms > 999 {
		return NewScalar(model.TypeTimestamp)
	}
	return dateClock(model.TypeTimestamp, y, mo, d, h, mi, s, ms*int(time.Millisecond))
}

// NewNanoTimestamp returns a NANOTIMESTAMP scalar.
func NewNanoTimestamp(y, mo, d, h, mi, s, ns int) *Value {
	return dateClock(model.TypeNanoTimestamp, y, mo, d, h, mi, s, ns)
}

// Time converts a temporal scalar to a UTC time.Time. Time-of-day types are
// anchored at 1970-01-01. ok is false for nulls and non-temporal values.
func (v *Value) Time() (time.Time, bool) {
	if v.typ.Category() != model.CategoryTemporal || v.IsNull() {
		return time.Time{}, false
	}
	return toTime(v.typ, v.Long()), true
}

func toTime(typ model.Type, n int64) time.Time {
	switch typ {
	case model.TypeDate:
		return time.Unix(n*secondsPerDay, 0).UTC()
	case model.TypeMonth:
		return time.Date(int(floorDiv(n, 12)), time.Month(n-floorDiv(n, 12)*12+1), 1, 0, 0, 0, 0, time.UTC)
	case model.TypeTime, model.TypeTimestamp:
		return time.UnixMilli(n).UTC()
	case model.TypeMinute:
		return time.Unix(n*60, 0).UTC()
	case model.TypeSecond, model.TypeDateTime:
		return time.Unix(n, 0).UTC()
	case model.TypeDateHour:
		return time.Unix(n*3600, 0).UTC()
	default:
		return time.Unix(0, n).UTC()
	}
}

func formatTemporal(typ model.Type, n int64) string {
	t := toTime(typ, n)
	switch typ {
	case model.TypeDate:
		return t.Format(layoutDate)
	case model.TypeMonth:
		return fmt.Sprintf("%04d.%02dM", t.Year(), int(t.Month()))
	case model.TypeTime:
		return t.Format(layoutTime)
	case model.TypeMinute:
		return fmt.Sprintf("%02d:%02dm", t.Hour(), t.Minute())
	case model.TypeSecond:
		return t.Format(layoutSecond)
	case model.TypeDateTime:
		return t.Format(layoutDateTime)
	case model.TypeDateHour:
		return t.Format(layoutDateHour)
	case model.TypeTimestamp:
		return t.Format(layoutTimestamp)
	case model.TypeNanoTime:
		return t.Format(layoutNanoTime)
	case model.TypeNanoTimestamp:
		return t.Format(layoutNanoTimestamp)
	}
	return strconv.FormatInt(n, 10)
}

func parseTemporal(typ model.Type, s string) (*Value, error) {
	var layout string
	switch typ {
	case model.TypeDate:
		layout = layoutDate
	case model.TypeMonth:
		s = strings.TrimSuffix(s, "M")
		layout = "2006.01"
	case model.TypeTime:
		layout = layoutTime
	case model.TypeMinute:
		s = strings.TrimSuffix(s, "m")
		layout = "15:04"
	case model.TypeSecond:
		layout = layoutSecond
	case model.TypeDateTime:
		layout = layoutDateTime
	case model.TypeDateHour:
		layout = layoutDateHour
	case model.TypeTimestamp:
		layout = layoutTimestamp
	case model.TypeNanoTime:
		layout = layoutNanoTime
	case model.TypeNanoTimestamp:
		layout = layoutNanoTimestamp
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, typ, s)
	}
	if typ == model.TypeTime || typ == model.TypeMinute || typ == model.TypeSecond || typ == model.TypeNanoTime {
		// Clock layouts parse into year 0; re-anchor on the epoch day.
		t = time.Date(1970, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return FromTime(typ, t), nil
}

// Parse converts text into a scalar of typ. Empty text yields a null scalar.
func Parse(typ model.Type, s string) (*Value, error) {
	if typ == model.TypeVoid {
		return NewVoid(), nil
	}
	if s == "" {
		return NewScalar(typ), nil
	}
	switch typ.Category() {
	case model.CategoryTemporal:
		return parseTemporal(typ, s)
	case model.CategoryLiteral:
		v := NewScalar(typ)
		v.vec.col.str[0] = s
		return v, nil
	case model.CategoryBinary:
		b, err := parseBinary(typ, s)
		if err != nil {
			return nil, err
		}
		return NewBinary(typ, b), nil
	case model.CategoryDenary:
		return parseDecimal(typ, s)
	case model.CategoryArray:
		row, err := parseArray(typ.ElementType(), s)
		if err != nil {
			return nil, err
		}
		return newVectorValue(model.FormVector, typ.ElementType(), row), nil
	}
	switch typ {
	case model.TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, typ, s)
		}
		return NewBool(b), nil
	case model.TypeChar, model.TypeShort, model.TypeInt, model.TypeLong:
		n, err := strconv.ParseInt(s, 10, typ.UnitLength()*8)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, typ, s)
		}
		v := NewScalar(typ)
		v.vec.col.setInt64(0, n)
		return v, nil
	case model.TypeFloat, model.TypeDouble:
		f, err := strconv.ParseFloat(s, typ.UnitLength()*8)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, typ, s)
		}
		v := NewScalar(typ)
		v.vec.col.setFloat64(0, f)
		return v, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %s", ErrInvalidLiteral, typ)
}

func parseBinary(typ model.Type, s string) ([16]byte, error) {
	var b [16]byte
	if s == "" {
		return b, nil
	}
	switch typ {
	case model.TypeUUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return b, fmt.Errorf("%w: UUID %q", ErrInvalidLiteral, s)
		}
		return u, nil
	case model.TypeIPAddr:
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return b, fmt.Errorf("%w: IPADDR %q", ErrInvalidLiteral, s)
		}
		if addr.Is4() {
			v4 := addr.As4()
			copy(b[12:], v4[:])
			return b, nil
		}
		return addr.As16(), nil
	default:
		return parseHex128(s)
	}
}

func parseHex128(s string) ([16]byte, error) {
	var b [16]byte
	if len(s) != 32 {
		return b, fmt.Errorf("%w: INT128 %q", ErrInvalidLiteral, s)
	}
	for i := 0; i < 16; i++ {
		x, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return b, fmt.Errorf("%w: INT128 %q", ErrInvalidLiteral, s)
		}
		b[i] = byte(x)
	}
	return b, nil
}

func formatBinary(typ model.Type, b [16]byte) string {
	switch typ {
	case model.TypeUUID:
		return uuid.UUID(b).String()
	case model.TypeIPAddr:
		if [12]byte(b[:12]) == [12]byte{} {
			return netip.AddrFrom4([4]byte(b[12:])).String()
		}
		return netip.AddrFrom16(b).String()
	default:
		return fmt.Sprintf("%032x", b[:])
	}
}

// EpochMillis returns the current wall-clock time in milliseconds since the
// epoch, the resolution of TIMESTAMP.
func EpochMillis() int64 {
	return time.Now().UnixMilli()
}

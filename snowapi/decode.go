package snowapi

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

// julianDayOfUnixEpoch is JD(1970-01-01): a date cell's Julian day
// number is the cell's "days since epoch" plus this constant.
const julianDayOfUnixEpoch = 2440588

// NullValue is the distinguished value a null cell decodes to,
// regardless of its column's type tag.
type NullValue struct{}

func (NullValue) String() string { return "" }

// Null is the singleton NullValue.
var Null = NullValue{}

// decodeCell maps one raw Service cell (nil for JSON null) to a typed
// Go value according to its column's declared type tag.
func decodeCell(rt RowType, raw *string) (any, error) {
	if raw == nil {
		return Null, nil
	}
	s := *raw

	switch strings.ToLower(rt.Type) {
	case "boolean":
		return s == "true", nil

	case "date":
		return decodeDate(s)

	case "fixed":
		return decodeFixed(s, rt.Scale)

	case "float", "double", "double precision", "real":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("decoding %s cell %q: %w", rt.Type, s, err)
		}
		return f, nil

	case "time", "datetime", "timestamp", "timestamp_ltz", "timestamp_ntz":
		return decodeEpochSeconds(s)

	case "timestamp_tz":
		return decodeTimestampTZ(s)

	default:
		// other / unrecognized: passthrough as-is.
		return s, nil
	}
}

// decodeDate turns "days since epoch" into a civil.Date via the
// Fliegel & van Flandern Julian-day-to-Gregorian conversion.
func decodeDate(s string) (civil.Date, error) {
	days, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return civil.Date{}, fmt.Errorf("decoding date cell %q: %w", s, err)
	}
	jd := days + julianDayOfUnixEpoch

	a := jd + 32044
	b := (4*a + 3) / 146097
	c := a - (146097*b)/4
	d := (4*c + 3) / 1461
	e := c - (1461*d)/4
	m := (5*e + 2) / 153

	day := e - (153*m+2)/5 + 1
	month := m + 3 - 12*(m/10)
	year := 100*b + d - 4800 + m/10

	return civil.Date{Year: int(year), Month: time.Month(month), Day: int(day)}, nil
}

// decodeFixed parses a fixed-point cell as an arbitrary-precision
// integer when scale is 0, or as a decimal rounded half-even to the
// declared scale otherwise. Neither path passes through float64.
func decodeFixed(s string, scale int) (any, error) {
	if scale == 0 {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("decoding fixed cell %q as integer", s)
		}
		return n, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding fixed cell %q: %w", s, err)
	}
	return d.RoundBank(int32(scale)), nil
}

// decodeEpochSeconds parses a decimal count of fractional seconds since
// the Unix epoch and yields the corresponding UTC instant.
func decodeEpochSeconds(s string) (time.Time, error) {
	sec, nsec, err := splitDecimalSeconds(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, nsec).UTC(), nil
}

// decodeTimestampTZ splits "<seconds> <offset_minutes>" and yields the
// instant at seconds - offset_minutes*60. This sign convention looks
// backwards for a UTC offset (adding, not subtracting, normally
// recovers UTC from local time) and may be an inversion; it is kept
// as is rather than corrected.
func decodeTimestampTZ(s string) (time.Time, error) {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("decoding timestamp_tz cell %q: expected \"<seconds> <offset_minutes>\"", s)
	}

	sec, nsec, err := splitDecimalSeconds(parts[0])
	if err != nil {
		return time.Time{}, err
	}
	offsetMinutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("decoding timestamp_tz offset %q: %w", parts[1], err)
	}

	return time.Unix(sec-offsetMinutes*60, nsec).UTC(), nil
}

// splitDecimalSeconds parses a decimal string into whole seconds and a
// nanosecond remainder without ever rounding through float64.
func splitDecimalSeconds(s string) (sec int64, nsec int64, err error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing %q as decimal seconds: %w", s, err)
	}
	whole := d.Truncate(0)
	frac := d.Sub(whole)
	return whole.IntPart(), frac.Mul(decimal.New(1, 9)).IntPart(), nil
}

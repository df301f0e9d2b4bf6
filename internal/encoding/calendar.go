package encoding

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// noTZOffset marks a calendar value with no timezone (the literal carried
// no offset and is treated as UTC on decode).
const noTZOffset int16 = 0x7FFF

// calendarFields is the shared 18-byte payload shape for every calendar
// literal tag (DateTime, Time, Date, and the five XSD gregorian-fragment
// types). Each tag uses only the subset of fields relevant to its
// granularity; the rest stay zero.
type calendarFields struct {
	Year            int32
	Month           uint8
	Day             uint8
	Hour            uint8
	Minute          uint8
	Second          uint8
	Nanos           uint32
	TZOffsetMinutes int16
}

func encodeCalendar(f calendarFields) [calendarSize]byte {
	var b [calendarSize]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(f.Year)) // #nosec G115 - bit-pattern conversion
	b[4] = f.Month
	b[5] = f.Day
	b[6] = f.Hour
	b[7] = f.Minute
	b[8] = f.Second
	binary.BigEndian.PutUint32(b[9:13], f.Nanos)
	binary.BigEndian.PutUint16(b[13:15], uint16(f.TZOffsetMinutes)) // #nosec G115 - bit-pattern conversion
	return b
}

func decodeCalendar(b []byte) calendarFields {
	return calendarFields{
		Year:            int32(binary.BigEndian.Uint32(b[0:4])), // #nosec G115 - bit-pattern conversion
		Month:           b[4],
		Day:             b[5],
		Hour:            b[6],
		Minute:          b[7],
		Second:          b[8],
		Nanos:           binary.BigEndian.Uint32(b[9:13]),
		TZOffsetMinutes: int16(binary.BigEndian.Uint16(b[13:15])), // #nosec G115 - bit-pattern conversion
	}
}

func tzOffsetMinutes(t time.Time) int16 {
	_, offset := t.Zone()
	return int16(offset / 60) // #nosec G115 - offsets fit well within int16 range
}

func calendarFromTime(t time.Time, hasTZ bool) calendarFields {
	f := calendarFields{
		Year:   int32(t.Year()), // #nosec G115 - bit-pattern conversion
		Month:  uint8(t.Month()),
		Day:    uint8(t.Day()),
		Hour:   uint8(t.Hour()),
		Minute: uint8(t.Minute()),
		Second: uint8(t.Second()),
		Nanos:  uint32(t.Nanosecond()), // #nosec G115 - bit-pattern conversion
	}
	if hasTZ {
		f.TZOffsetMinutes = tzOffsetMinutes(t)
	} else {
		f.TZOffsetMinutes = noTZOffset
	}
	return f
}

func (f calendarFields) toTime() time.Time {
	loc := time.UTC
	if f.TZOffsetMinutes != noTZOffset {
		loc = time.FixedZone("", int(f.TZOffsetMinutes)*60)
	}
	return time.Date(int(f.Year), time.Month(f.Month), int(f.Day), int(f.Hour), int(f.Minute), int(f.Second), int(f.Nanos), loc)
}

func encodeDateTimeLiteral(value string) ([calendarSize]byte, error) {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return encodeCalendar(calendarFromTime(t, true)), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", trimmed)
	if err != nil {
		return [calendarSize]byte{}, fmt.Errorf("invalid datetime literal %q: %w", value, err)
	}
	return encodeCalendar(calendarFromTime(t, false)), nil
}

func decodeDateTimeLiteral(b []byte) string {
	f := decodeCalendar(b)
	return f.toTime().Format(time.RFC3339Nano)
}

func encodeTimeLiteral(value string) ([calendarSize]byte, error) {
	trimmed := strings.TrimSpace(value)
	t, err := time.Parse("15:04:05Z07:00", trimmed)
	hasTZ := err == nil
	if err != nil {
		t, err = time.Parse("15:04:05", trimmed)
		if err != nil {
			return [calendarSize]byte{}, fmt.Errorf("invalid time literal %q: %w", value, err)
		}
	}
	return encodeCalendar(calendarFromTime(t, hasTZ)), nil
}

func decodeTimeLiteral(b []byte) string {
	f := decodeCalendar(b)
	t := f.toTime()
	if f.TZOffsetMinutes == noTZOffset {
		return t.Format("15:04:05")
	}
	return t.Format("15:04:05Z07:00")
}

func encodeDateLiteral(value string) ([calendarSize]byte, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return [calendarSize]byte{}, fmt.Errorf("invalid date literal %q: %w", value, err)
	}
	f := calendarFields{Year: int32(t.Year()), Month: uint8(t.Month()), Day: uint8(t.Day()), TZOffsetMinutes: noTZOffset} // #nosec G115
	return encodeCalendar(f), nil
}

func decodeDateLiteral(b []byte) string {
	f := decodeCalendar(b)
	return fmt.Sprintf("%04d-%02d-%02d", f.Year, f.Month, f.Day)
}

func encodeGYearMonthLiteral(value string) ([calendarSize]byte, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(value))
	if err != nil {
		return [calendarSize]byte{}, fmt.Errorf("invalid gYearMonth literal %q: %w", value, err)
	}
	f := calendarFields{Year: int32(t.Year()), Month: uint8(t.Month()), TZOffsetMinutes: noTZOffset} // #nosec G115
	return encodeCalendar(f), nil
}

func decodeGYearMonthLiteral(b []byte) string {
	f := decodeCalendar(b)
	return fmt.Sprintf("%04d-%02d", f.Year, f.Month)
}

func encodeGYearLiteral(value string) ([calendarSize]byte, error) {
	t, err := time.Parse("2006", strings.TrimSpace(value))
	if err != nil {
		return [calendarSize]byte{}, fmt.Errorf("invalid gYear literal %q: %w", value, err)
	}
	f := calendarFields{Year: int32(t.Year()), TZOffsetMinutes: noTZOffset} // #nosec G115
	return encodeCalendar(f), nil
}

func decodeGYearLiteral(b []byte) string {
	f := decodeCalendar(b)
	return fmt.Sprintf("%04d", f.Year)
}

func encodeGMonthDayLiteral(value string) ([calendarSize]byte, error) {
	var month, day int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "--%d-%d", &month, &day); err != nil {
		return [calendarSize]byte{}, fmt.Errorf("invalid gMonthDay literal %q: %w", value, err)
	}
	f := calendarFields{Month: uint8(month), Day: uint8(day), TZOffsetMinutes: noTZOffset}
	return encodeCalendar(f), nil
}

func decodeGMonthDayLiteral(b []byte) string {
	f := decodeCalendar(b)
	return fmt.Sprintf("--%02d-%02d", f.Month, f.Day)
}

func encodeGDayLiteral(value string) ([calendarSize]byte, error) {
	var day int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "---%d", &day); err != nil {
		return [calendarSize]byte{}, fmt.Errorf("invalid gDay literal %q: %w", value, err)
	}
	f := calendarFields{Day: uint8(day), TZOffsetMinutes: noTZOffset}
	return encodeCalendar(f), nil
}

func decodeGDayLiteral(b []byte) string {
	f := decodeCalendar(b)
	return fmt.Sprintf("---%02d", f.Day)
}

func encodeGMonthLiteral(value string) ([calendarSize]byte, error) {
	var month int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "--%d", &month); err != nil {
		return [calendarSize]byte{}, fmt.Errorf("invalid gMonth literal %q: %w", value, err)
	}
	f := calendarFields{Month: uint8(month), TZOffsetMinutes: noTZOffset}
	return encodeCalendar(f), nil
}

func decodeGMonthLiteral(b []byte) string {
	f := decodeCalendar(b)
	return fmt.Sprintf("--%02d", f.Month)
}

package encoding

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
)

// xsdDurationPattern matches the XSD duration lexical form PnYnMnDTnHnMnS,
// with every component optional except the leading P.
var xsdDurationPattern = regexp.MustCompile(
	`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:([\d.]+)S)?)?$`)

func parseXSDDuration(value string) (months int64, seconds float64, err error) {
	m := xsdDurationPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid duration literal: %q", value)
	}
	years := parseIntGroup(m[2])
	mon := parseIntGroup(m[3])
	days := parseIntGroup(m[4])
	hours := parseIntGroup(m[5])
	mins := parseIntGroup(m[6])
	secs := parseFloatGroup(m[7])

	months = years*12 + mon
	seconds = float64(days)*86400 + float64(hours)*3600 + float64(mins)*60 + secs
	if m[1] == "-" {
		months, seconds = -months, -seconds
	}
	return months, seconds, nil
}

func parseIntGroup(s string) int64 {
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloatGroup(s string) float64 {
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func encodeDuration24(months int64, seconds float64) [24]byte {
	var b [24]byte
	whole := int64(seconds)
	nanos := uint32((seconds - float64(whole)) * 1e9) // #nosec G115 - fractional remainder fits uint32
	binary.BigEndian.PutUint64(b[0:8], uint64(months)) // #nosec G115 - bit-pattern conversion
	binary.BigEndian.PutUint64(b[8:16], uint64(whole)) // #nosec G115 - bit-pattern conversion
	binary.BigEndian.PutUint32(b[16:20], nanos)
	return b
}

func decodeDuration24(b []byte) (months int64, seconds float64) {
	months = int64(binary.BigEndian.Uint64(b[0:8]))  // #nosec G115 - bit-pattern conversion
	whole := int64(binary.BigEndian.Uint64(b[8:16])) // #nosec G115 - bit-pattern conversion
	nanos := binary.BigEndian.Uint32(b[16:20])
	seconds = float64(whole) + float64(nanos)/1e9
	return months, seconds
}

func encodeYearMonthDuration8(months int64) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(months)) // #nosec G115 - bit-pattern conversion
	return b
}

func decodeYearMonthDuration8(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b)) // #nosec G115 - bit-pattern conversion
}

func encodeDayTimeDuration16(seconds float64) [16]byte {
	var b [16]byte
	whole := int64(seconds)
	nanos := uint32((seconds - float64(whole)) * 1e9) // #nosec G115 - fractional remainder fits uint32
	binary.BigEndian.PutUint64(b[0:8], uint64(whole))  // #nosec G115 - bit-pattern conversion
	binary.BigEndian.PutUint32(b[8:12], nanos)
	return b
}

func decodeDayTimeDuration16(b []byte) float64 {
	whole := int64(binary.BigEndian.Uint64(b[0:8])) // #nosec G115 - bit-pattern conversion
	nanos := binary.BigEndian.Uint32(b[8:12])
	return float64(whole) + float64(nanos)/1e9
}

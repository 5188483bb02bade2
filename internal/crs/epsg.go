package crs

import (
	"fmt"
	"strconv"
	"strings"
)

// WGS84 is the fixed geographic target of every transformation.
const WGS84 = 4326

// ParseEPSG parses an EPSG identifier such as "EPSG:32644" or "32644".
func ParseEPSG(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if rest, ok := cutPrefixFold(trimmed, "epsg:"); ok {
		trimmed = strings.TrimSpace(rest)
	}
	code, err := strconv.Atoi(trimmed)
	if err != nil || code <= 0 {
		return 0, &TransformError{CRS: s, Reason: "malformed EPSG identifier"}
	}
	return code, nil
}

// UTMEPSG maps a UTM zone and hemisphere to its WGS84 EPSG code:
// 32600+zone for the northern hemisphere, 32700+zone for the southern.
func UTMEPSG(zone int, hemisphere string) (int, error) {
	if zone < 1 || zone > 60 {
		return 0, &TransformError{
			CRS:    fmt.Sprintf("UTM zone %d", zone),
			Reason: "zone must be in 1-60",
		}
	}
	switch strings.ToUpper(strings.TrimSpace(hemisphere)) {
	case "N", "":
		return 32600 + zone, nil
	case "S":
		return 32700 + zone, nil
	default:
		return 0, &TransformError{
			CRS:    fmt.Sprintf("UTM hemisphere %q", hemisphere),
			Reason: "hemisphere must be N or S",
		}
	}
}

// utmZone decomposes a UTM EPSG code. ok is false for anything outside the
// 326xx/327xx WGS84 families.
func utmZone(code int) (zone int, northern bool, ok bool) {
	switch {
	case code >= 32601 && code <= 32660:
		return code - 32600, true, true
	case code >= 32701 && code <= 32760:
		return code - 32700, false, true
	default:
		return 0, false, false
	}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

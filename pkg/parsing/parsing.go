// Package parsing normalizes the heterogeneous numeric representations found
// in property records into floats. Upstream data mixes plain numbers,
// monetary strings with currency symbols and thousands separators, percent
// strings, and French decimal commas; every function here resolves bad input
// to a default instead of returning an error so the calculation packages
// never have to special-case malformed data.
package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// emptyTokens are string values treated as zero by Number.
var emptyTokens = map[string]struct{}{
	"":     {},
	"none": {},
	"null": {},
	"n/a":  {},
	"na":   {},
}

// asFloat returns the value directly when it is already numeric.
func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Amount parses a monetary value. Currency symbols, spaces (including
// non-breaking spaces) and thousands commas are stripped before parsing.
// Unparseable input resolves to 0.
func Amount(value interface{}) float64 {
	if value == nil {
		return 0
	}
	if f, ok := asFloat(value); ok {
		return f
	}
	s, ok := value.(string)
	if !ok {
		return 0
	}
	s = strings.NewReplacer("$", "", " ", "", " ", "", ",", "").Replace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Percent parses a percentage value such as "5,5 %" or "4.25%". The percent
// sign is stripped and a French decimal comma is converted to a dot. When
// direct parsing fails the first numeric substring is extracted instead.
// Unparseable input resolves to 0.
func Percent(value interface{}) float64 {
	return Float(value, 0, "%")
}

// Number parses a generic numeric value with the same cleanup as Percent
// and additionally treats "none", "null", "n/a", "na" and the empty string
// (case-insensitive) as 0.
func Number(value interface{}) float64 {
	if s, ok := value.(string); ok {
		if _, empty := emptyTokens[strings.ToLower(strings.TrimSpace(s))]; empty {
			return 0
		}
	}
	return Float(value, 0)
}

// Float parses an arbitrary value into a float64, returning def when the
// value cannot be interpreted. Any characters in strip are removed before
// parsing, spaces and currency symbols are always removed, and a decimal
// comma is converted to a dot. When direct parsing fails the first numeric
// substring is used as a fallback.
func Float(value interface{}, def float64, strip ...string) float64 {
	if value == nil {
		return def
	}
	if f, ok := asFloat(value); ok {
		return f
	}
	s, ok := value.(string)
	if !ok {
		return def
	}
	for _, chars := range strip {
		for _, c := range chars {
			s = strings.ReplaceAll(s, string(c), "")
		}
	}
	s = strings.NewReplacer("$", "", " ", "", " ", "").Replace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if match := numberPattern.FindString(s); match != "" {
		if f, err := strconv.ParseFloat(match, 64); err == nil {
			return f
		}
	}
	return def
}

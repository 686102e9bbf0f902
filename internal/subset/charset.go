package subset

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Charset is a set of runes to keep in a subset font.
type Charset map[rune]struct{}

// NewCharset returns a Charset holding every rune of each string.
func NewCharset(parts ...string) Charset {
	cs := Charset{}
	for _, p := range parts {
		cs.AddString(p)
	}
	return cs
}

// Add inserts runes.
func (cs Charset) Add(rs ...rune) {
	for _, r := range rs {
		cs[r] = struct{}{}
	}
}

// AddString inserts every rune of s.
func (cs Charset) AddString(s string) {
	for _, r := range s {
		cs[r] = struct{}{}
	}
}

// AddRange inserts lo..hi inclusive.
func (cs Charset) AddRange(lo, hi rune) {
	for r := lo; r <= hi; r++ {
		cs[r] = struct{}{}
	}
}

// Contains reports whether r is in the set.
func (cs Charset) Contains(r rune) bool {
	_, ok := cs[r]
	return ok
}

// Len returns the number of runes.
func (cs Charset) Len() int { return len(cs) }

// Runes returns the runes in ascending order.
func (cs Charset) Runes() []rune {
	out := make([]rune, 0, len(cs))
	for r := range cs {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// String returns the runes in ascending order as text.
func (cs Charset) String() string {
	return string(cs.Runes())
}

// Site character groups. Together they cover everything the site renders
// in the terminal font.
const (
	ASCIIUpper       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	ASCIILower       = "abcdefghijklmnopqrstuvwxyz"
	ASCIIDigits      = "0123456789"
	ASCIIPunctuation = " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	CurlyQuotes = "‘’“”"
	Dashes      = "–—"
	Symbols     = "©®™…°•×÷±"

	LatinUpper = "ÀÁÂÃÄÅ" +
		"ÆÇ" +
		"ÈÉÊË" +
		"ÌÍÎÏ" +
		"ÐÑ" +
		"ÒÓÔÕÖØ" +
		"ÙÚÛÜ" +
		"ÝÞ"

	LatinLower = "ß" +
		"àáâãäå" +
		"æç" +
		"èéêë" +
		"ìíîï" +
		"ðñ" +
		"òóôõöø" +
		"ùúûü" +
		"ýþÿ"
)

// DefaultCharset returns the characters used across the site.
func DefaultCharset() Charset {
	return NewCharset(
		ASCIIUpper, ASCIILower, ASCIIDigits, ASCIIPunctuation,
		CurlyQuotes, Dashes, Symbols,
		LatinUpper, LatinLower,
	)
}

// ParseRanges parses a comma-separated list of code points and ranges such
// as "U+0020-007E, U+00A9" into a Charset. The "U+" prefix is optional.
func ParseRanges(s string) (Charset, error) {
	cs := Charset{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		loStr, hiStr, isRange := strings.Cut(field, "-")
		lo, err := parseCodePoint(loStr)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", field, err)
		}
		hi := lo
		if isRange {
			if hi, err = parseCodePoint(hiStr); err != nil {
				return nil, fmt.Errorf("range %q: %w", field, err)
			}
		}
		if hi < lo {
			return nil, fmt.Errorf("range %q: end before start", field)
		}
		cs.AddRange(lo, hi)
	}
	return cs, nil
}

func parseCodePoint(s string) (rune, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "U+" || s[:2] == "u+") {
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid code point %q", s)
	}
	if v > 0x10FFFF {
		return 0, fmt.Errorf("code point %X beyond U+10FFFF", v)
	}
	return rune(v), nil
}

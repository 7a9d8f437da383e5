package feed

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digitsRegex = regexp.MustCompile(`\d+`)

// extractTag returns the content of the first <name>...</name> in s with any
// CDATA wrapper removed and surrounding whitespace trimmed. A missing or
// unterminated tag yields "".
func extractTag(s, name string) string {
	raw, ok := rawTag(s, name)
	if !ok {
		return ""
	}
	return stripCDATA(raw)
}

// FindTag reports whether s contains a <name> element and returns its
// trimmed, CDATA-stripped content.
func FindTag(s, name string) (string, bool) {
	raw, ok := rawTag(s, name)
	if !ok {
		return "", false
	}
	return stripCDATA(raw), true
}

// rawTag returns the untouched content of the first <name>...</name> in s.
func rawTag(s, name string) (string, bool) {
	body, _, ok := nextTag(s, name)
	return body, ok
}

// nextTag is rawTag that also reports the offset just past the match.
func nextTag(s, name string) (body string, next int, ok bool) {
	closeTag := "</" + name + ">"
	for offset := 0; offset < len(s); {
		idx := strings.Index(s[offset:], "<"+name)
		if idx < 0 {
			return "", 0, false
		}
		idx += offset
		if !isOpenTag(s[idx:], name) {
			offset = idx + 1
			continue
		}
		gt := strings.IndexByte(s[idx:], '>')
		if gt < 0 {
			return "", 0, false
		}
		if s[idx+gt-1] == '/' {
			return "", idx + gt + 1, true
		}
		bodyStart := idx + gt + 1
		end := strings.Index(s[bodyStart:], closeTag)
		if end < 0 {
			return "", 0, false
		}
		return s[bodyStart : bodyStart+end], bodyStart + end + len(closeTag), true
	}
	return "", 0, false
}

func stripCDATA(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, cdataOpen) {
		s = strings.TrimPrefix(s, cdataOpen)
		if end := strings.LastIndex(s, cdataClose); end >= 0 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

// parseInt is best-effort: plain integers, "1.598" thousands notation,
// "12,5" decimals (truncated) and text with an embedded number all parse.
// Anything without digits yields 0.
func parseInt(s string) int {
	v, _ := parseOptionalInt(s)
	return v
}

// parseOptionalIntPtr returns nil when s holds no number at all.
func parseOptionalIntPtr(s string) *int {
	v, ok := parseOptionalInt(s)
	if !ok {
		return nil
	}
	return &v
}

func parseOptionalInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}

	cleaned := strings.ReplaceAll(s, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	if comma := strings.IndexByte(cleaned, ','); comma >= 0 {
		cleaned = cleaned[:comma]
	}
	if v, err := strconv.Atoi(cleaned); err == nil {
		return v, true
	}

	m := digitsRegex.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePrice converts an Italian formatted amount ("12.500,50") to a float.
// Currency symbols and spaces are ignored; unparseable or negative input
// yields 0.
func ParsePrice(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := strings.Replace(b.String(), ",", ".", 1)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, "true") || s == "1"
}

package metrics

import "strings"

const maxLabelBytes = 200

// Sanitize strips high-cardinality substrings out of an error message
// before it becomes a metric label: long hex runs
// (tx hashes, addresses) and long decimal runs (block numbers, amounts)
// collapse to a placeholder, and the result is truncated to 200 bytes.
func Sanitize(msg string) string {
	out := stripRuns(msg, isDecimalDigit, 5, "<num>")
	out = stripRuns(out, isHexDigit, 8, "<hex>")
	if len(out) > maxLabelBytes {
		out = out[:maxLabelBytes]
	}
	return out
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isDecimalDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// stripRuns replaces every maximal run of length >= minLen where every
// byte satisfies class with replacement.
func stripRuns(s string, class func(byte) bool, minLen int, replacement string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if !class(s[i]) {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && class(s[j]) {
			j++
		}
		if j-i >= minLen {
			b.WriteString(replacement)
		} else {
			b.WriteString(s[i:j])
		}
		i = j
	}
	return b.String()
}

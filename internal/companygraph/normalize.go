package companygraph

import "regexp"

var parenthesized = regexp.MustCompile(`\(([^)]+)\)`)

// NormalizeResponsibleName extracts the personal name registered in
// parentheses, as in "ACME CORP (陳一)". Names without a non-empty
// parenthesized part are returned unchanged.
func NormalizeResponsibleName(fullName string) string {
	if m := parenthesized.FindStringSubmatch(fullName); m != nil {
		return m[1]
	}
	return fullName
}

package syntax

import (
	"regexp"
	"strings"
)

var safeToken = regexp.MustCompile(`^[A-Za-z0-9_./:=+@%^-]+$`)

// Quote renders s as exactly one token of the mini-language. Strings made
// only of safe characters pass through unquoted; everything else is
// single-quoted with embedded single quotes escaped as '\''.
func Quote(s string) string {
	if safeToken.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Package impact resolves breaking spec changes against the endpoint
// usage corpus and aggregates what client code they would break.
package impact

import (
	"regexp"
	"strings"
)

// paramRe finds `{param}` placeholders after the spec path has been
// regex-escaped.
var paramRe = regexp.MustCompile(`\\\{[^/]+?\\\}`)

// PathMatches reports whether a path recorded in client code plausibly
// refers to the given spec path. Exact equality short-circuits; otherwise
// each `{param}` placeholder becomes a single-segment wildcard and the
// whole path must match, queries stripped from both sides.
func PathMatches(specPath, usagePath string) bool {
	if specPath == usagePath {
		return true
	}

	sp := stripQuery(specPath)
	up := stripQuery(usagePath)
	if sp == up {
		return true
	}

	pattern := "^" + paramRe.ReplaceAllString(regexp.QuoteMeta(sp), "[^/]+") + "$"
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(up)
}

// MethodMatches reports whether a usage's recorded method is compatible
// with a change's method. A change without a method matches anything; a
// usage whose method the scanner could not determine stays a candidate.
func MethodMatches(changeMethod, usageMethod string) bool {
	if changeMethod == "" || usageMethod == "" {
		return true
	}
	return strings.EqualFold(changeMethod, usageMethod)
}

func stripQuery(path string) string {
	if i := strings.Index(path, "?"); i >= 0 {
		return path[:i]
	}
	return path
}

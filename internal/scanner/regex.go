package scanner

import (
	"math"
	"regexp"
	"strings"

	"github.com/specwatch/specwatch/pkg/types"
)

// apiPathRe is the gate every candidate must pass: a versioned or /api/
// segment somewhere in the URL.
var apiPathRe = regexp.MustCompile(`(?i)/(v\d+|api)/`)

// noiseWords disqualify a candidate outright; they mark sample code and
// documentation rather than live endpoint references.
var noiseWords = []string{"example", "placeholder", "docs", "readme"}

// fullURLPathRe extracts the path (plus any query) from a full URL.
var fullURLPathRe = regexp.MustCompile(`https?://[^/]+(/.+)`)

// RegexScanner is the shipped FileScanner: table-driven, line-oriented
// regex matching per language. Fast, and accurate enough to drive impact
// analysis; a syntax-tree scanner can replace it behind the same interface.
type RegexScanner struct{}

// NewRegexScanner creates a regex-based file scanner.
func NewRegexScanner() *RegexScanner {
	return &RegexScanner{}
}

// SupportsFile reports whether the extension maps to a known language table.
func (s *RegexScanner) SupportsFile(ext string) bool {
	_, ok := extensionLanguage[strings.ToLower(ext)]
	return ok
}

// ScanFile scans one file line by line against the language's pattern table.
func (s *RegexScanner) ScanFile(path string, content string) []types.EndpointUsage {
	language, ok := extensionLanguage[fileExt(path)]
	if !ok {
		return nil
	}

	patterns := languageTables[language]
	var matches []types.EndpointUsage

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if isCommentLine(line, language) {
			continue
		}

		// Tables are ordered with method-aware patterns first; once a path
		// matched on this line, the generic string-literal patterns must not
		// report it again.
		seen := map[string]bool{}

		for _, pat := range patterns {
			for _, groups := range pat.re.FindAllStringSubmatch(line, -1) {
				method, url := extract(pat, groups)

				url = strings.TrimSpace(url)
				if !looksLikeEndpoint(url) {
					continue
				}
				p := pathFromURL(url)
				if seen[p] {
					continue
				}
				seen[p] = true

				matches = append(matches, types.EndpointUsage{
					Path:            p,
					Method:          method,
					FilePath:        path,
					LineNumber:      i + 1,
					CodeContext:     strings.TrimSpace(line),
					Confidence:      confidence(line, url, language),
					DetectionMethod: types.DetectionRegex,
				})
			}
		}
	}

	return matches
}

// extract pulls the (method, URL) pair out of a regex match according to
// the pattern's extraction mode.
func extract(pat pattern, groups []string) (method, url string) {
	switch pat.mode {
	case modeMethodURL:
		if len(groups) > 2 {
			return normalizeMethod(groups[1]), groups[2]
		}
	case modeFixed:
		if len(groups) > 1 {
			return pat.method, groups[1]
		}
	case modeURL:
		if len(groups) > 1 {
			return "", groups[1]
		}
	}
	return "", ""
}

// normalizeMethod reduces a matched client-call verb to a canonical HTTP
// method. Client identifiers like GetAsync or PostAsJsonAsync normalize by
// prefix; unrecognized verbs yield an unknown method.
func normalizeMethod(raw string) string {
	m := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(m, "DEL"):
		return "DELETE"
	case strings.HasPrefix(m, "GET"):
		return "GET"
	case strings.HasPrefix(m, "POST"):
		return "POST"
	case strings.HasPrefix(m, "PUT"):
		return "PUT"
	case strings.HasPrefix(m, "PATCH"):
		return "PATCH"
	case strings.HasPrefix(m, "HEAD"):
		return "HEAD"
	case strings.HasPrefix(m, "OPTIONS"):
		return "OPTIONS"
	}
	return ""
}

// looksLikeEndpoint is the candidate filter: the URL must contain a
// versioned or /api/ segment and none of the noise words.
func looksLikeEndpoint(url string) bool {
	if url == "" || !apiPathRe.MatchString(url) {
		return false
	}
	lower := strings.ToLower(url)
	for _, w := range noiseWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

// pathFromURL reduces a full URL to its path component; relative paths
// pass through unchanged.
func pathFromURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		if m := fullURLPathRe.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return url
}

// confidence scores a match. Starts at 1.0: template or interpolation
// markers cost 0.6x, a known HTTP client identifier on the line earns a
// 1.2x boost (capped), and a match sitting after an inline comment marker
// is halved. Always clamped to [0, 1].
func confidence(line, url, language string) float64 {
	c := 1.0

	if strings.Contains(url, "${") || strings.Contains(url, "{") || strings.Contains(url, "%") {
		c *= 0.6
	}

	for _, ident := range httpClientIdents[language] {
		if strings.Contains(line, ident) {
			c = math.Min(c*1.2, 1.0)
			break
		}
	}

	if idx := strings.Index(line, url); idx > 0 {
		marker := "//"
		if hashCommentLanguages[language] {
			marker = "#"
		}
		if strings.Contains(line[:idx], marker) {
			c *= 0.5
		}
	}

	return math.Min(math.Max(c, 0), 1)
}

// isCommentLine recognizes full-line comments for the language so commented
// out calls never produce usages.
func isCommentLine(line, language string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}

	if hashCommentLanguages[language] {
		if strings.HasPrefix(s, "#") {
			return true
		}
		if language == "python" && (strings.HasPrefix(s, `"""`) || strings.HasPrefix(s, "'''")) {
			return true
		}
		if language == "ruby" && strings.HasPrefix(s, "=begin") {
			return true
		}
		return false
	}

	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") || strings.HasPrefix(s, "*")
}

package scanner

import "regexp"

// extractionMode describes how a pattern's capture groups map to a match.
type extractionMode int

const (
	// modeURL: group 1 is the URL, the HTTP method is unknown.
	modeURL extractionMode = iota
	// modeMethodURL: group 1 is the HTTP method, group 2 is the URL.
	modeMethodURL
	// modeFixed: group 1 is the URL, the method is fixed by the pattern.
	modeFixed
)

// pattern is one entry in a language's detection table.
type pattern struct {
	re     *regexp.Regexp
	mode   extractionMode
	method string // set when mode == modeFixed
}

func urlPat(expr string) pattern {
	return pattern{re: regexp.MustCompile("(?i)" + expr), mode: modeURL}
}

func methodPat(expr string) pattern {
	return pattern{re: regexp.MustCompile("(?i)" + expr), mode: modeMethodURL}
}

func fixedPat(expr, method string) pattern {
	return pattern{re: regexp.MustCompile("(?i)" + expr), mode: modeFixed, method: method}
}

// languageTables holds the per-language detection patterns, in match
// priority order. The tables are data, not code, so per-language behavior
// can be tested table-driven and extended without touching the scan loop.
var languageTables = map[string][]pattern{
	"javascript": {
		// Custom API wrapper helpers, with or without TypeScript generics.
		fixedPat(`apiGet\s*(?:<[^>]+>)?\s*\(\s*['"]([^'"]+)['"]`, "GET"),
		fixedPat(`apiPost\s*(?:<[^>]+>)?\s*\(\s*['"]([^'"]+)['"]`, "POST"),
		fixedPat(`apiPut\s*(?:<[^>]+>)?\s*\(\s*['"]([^'"]+)['"]`, "PUT"),
		fixedPat(`apiPatch\s*(?:<[^>]+>)?\s*\(\s*['"]([^'"]+)['"]`, "PATCH"),
		fixedPat(`apiDelete\s*(?:<[^>]+>)?\s*\(\s*['"]([^'"]+)['"]`, "DELETE"),

		// Template literal variants of the same helpers.
		fixedPat("apiGet\\s*(?:<[^>]+>)?\\s*\\(\\s*\x60([^\x60]+)\x60", "GET"),
		fixedPat("apiPost\\s*(?:<[^>]+>)?\\s*\\(\\s*\x60([^\x60]+)\x60", "POST"),
		fixedPat("apiPut\\s*(?:<[^>]+>)?\\s*\\(\\s*\x60([^\x60]+)\x60", "PUT"),
		fixedPat("apiPatch\\s*(?:<[^>]+>)?\\s*\\(\\s*\x60([^\x60]+)\x60", "PATCH"),
		fixedPat("apiDelete\\s*(?:<[^>]+>)?\\s*\\(\\s*\x60([^\x60]+)\x60", "DELETE"),

		// fetch with quotes or template literals.
		urlPat(`fetch\s*\(\s*['"]([^'"]+)['"]`),
		urlPat("fetch\\s*\\(\\s*\x60([^\x60]+)\x60"),

		// axios and friends.
		methodPat(`axios\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`request\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`http\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`got\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`superagent\.(get|post|put|del|patch)\s*\(\s*['"]([^'"]+)['"]`),
	},

	"python": {
		methodPat(`requests\.(get|post|put|delete|patch|head|options)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`httpx\.(get|post|put|delete|patch|head|options)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`aiohttp\.(get|post|put|delete|patch|head|options)\s*\(\s*['"]([^'"]+)['"]`),
		urlPat(`urllib\.request\.urlopen\s*\(\s*['"]([^'"]+)['"]`),
		urlPat(`['"](/(?:v\d+|api)/[^\s'"]+)['"]`),
		urlPat(`['"](https?://[^'"]+/(?:v\d+|api)/[^\s'"]+)['"]`),
	},

	"csharp": {
		methodPat(`HttpClient\s*\.\s*(GetAsync|PostAsync|PutAsync|DeleteAsync|PatchAsync|GetStringAsync|PostAsJsonAsync)\s*\(\s*"([^"]+)"`),
		urlPat(`RestRequest\s*\(\s*"([^"]+)"`),
		methodPat(`(GetAsync|PostAsync|PutAsync|DeleteAsync)\s*\(\s*"([^"]+)"`),
		urlPat(`"(/(?:v\d+|api)/[^\s"]+)"`),
		urlPat(`"(https?://[^"]+/(?:v\d+|api)/[^\s"]+)"`),
	},

	"java": {
		urlPat(`HttpRequest\s*\.\s*newBuilder\s*\(\s*URI\s*\.\s*create\s*\(\s*"([^"]+)"`),
		urlPat(`Request\s*\.\s*Builder\s*\(\s*\)\s*\.\s*url\s*\(\s*"([^"]+)"`),
		fixedPat(`HttpGet\s*\(\s*"([^"]+)"`, "GET"),
		fixedPat(`HttpPost\s*\(\s*"([^"]+)"`, "POST"),
		fixedPat(`HttpPut\s*\(\s*"([^"]+)"`, "PUT"),
		fixedPat(`HttpDelete\s*\(\s*"([^"]+)"`, "DELETE"),
		methodPat(`restTemplate\.(get|post|put|delete|patch)ForObject\s*\(\s*"([^"]+)"`),
		urlPat(`"(/(?:v\d+|api)/[^\s"]+)"`),
		urlPat(`"(https?://[^"]+/(?:v\d+|api)/[^\s"]+)"`),
	},

	"go": {
		methodPat(`http\.(Get|Post|Put|Delete|Head)\s*\(\s*"([^"]+)"`),
		methodPat(`http\.NewRequest\s*\(\s*"(GET|POST|PUT|DELETE|PATCH)"\s*,\s*"([^"]+)"`),
		methodPat(`NewRequest\s*\(\s*"(GET|POST|PUT|DELETE|PATCH)"\s*,\s*"([^"]+)"`),
		urlPat(`"(/(?:v\d+|api)/[^\s"]+)"`),
		urlPat(`"(https?://[^"]+/(?:v\d+|api)/[^\s"]+)"`),
	},

	"ruby": {
		methodPat(`Net::HTTP\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`HTTParty\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`Faraday\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`),
		methodPat(`RestClient\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`),
		urlPat(`['"](/(?:v\d+|api)/[^\s'"]+)['"]`),
		urlPat(`['"](https?://[^'"]+/(?:v\d+|api)/[^\s'"]+)['"]`),
	},

	"php": {
		fixedPat(`->get\s*\(\s*['"]([^'"]+)['"]`, "GET"),
		fixedPat(`->post\s*\(\s*['"]([^'"]+)['"]`, "POST"),
		fixedPat(`->put\s*\(\s*['"]([^'"]+)['"]`, "PUT"),
		fixedPat(`->delete\s*\(\s*['"]([^'"]+)['"]`, "DELETE"),
		fixedPat(`->patch\s*\(\s*['"]([^'"]+)['"]`, "PATCH"),
		urlPat(`curl_setopt\s*\(\s*[^,]+,\s*CURLOPT_URL\s*,\s*['"]([^'"]+)['"]`),
		urlPat(`file_get_contents\s*\(\s*['"]([^'"]+)['"]`),
		urlPat(`['"](/(?:v\d+|api)/[^\s'"]+)['"]`),
		urlPat(`['"](https?://[^'"]+/(?:v\d+|api)/[^\s'"]+)['"]`),
	},

	"rust": {
		fixedPat(`reqwest::get\s*\(\s*"([^"]+)"`, "GET"),
		methodPat(`client\.(get|post|put|delete|patch)\s*\(\s*"([^"]+)"`),
		fixedPat(`Request::get\s*\(\s*"([^"]+)"`, "GET"),
		fixedPat(`Request::post\s*\(\s*"([^"]+)"`, "POST"),
		urlPat(`"(/(?:v\d+|api)/[^\s"]+)"`),
		urlPat(`"(https?://[^"]+/(?:v\d+|api)/[^\s"]+)"`),
	},
}

// extensionLanguage maps supported file extensions to their language table.
var extensionLanguage = map[string]string{
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "javascript",
	".tsx":  "javascript",
	".py":   "python",
	".cs":   "csharp",
	".java": "java",
	".go":   "go",
	".rb":   "ruby",
	".php":  "php",
	".rs":   "rust",
}

// httpClientIdents are tokens whose presence on a line boosts confidence:
// the URL is being handed to a known HTTP client rather than sitting in
// arbitrary string context.
var httpClientIdents = map[string][]string{
	"javascript": {"fetch", "axios", "request", "http", "got", "apiGet", "apiPost", "apiPut", "apiDelete", "apiPatch"},
	"python":     {"requests", "httpx", "aiohttp", "urllib"},
	"csharp":     {"HttpClient", "RestSharp", "GetAsync", "PostAsync"},
	"java":       {"HttpClient", "OkHttp", "restTemplate", "HttpGet", "HttpPost"},
	"go":         {"http.", "NewRequest"},
	"ruby":       {"HTTParty", "Faraday", "RestClient", "Net::HTTP"},
	"php":        {"Guzzle", "curl_", "file_get_contents"},
	"rust":       {"reqwest", "hyper"},
}

// hashCommentLanguages use # for line comments; everything else supported
// here uses C-style //.
var hashCommentLanguages = map[string]bool{
	"python": true,
	"ruby":   true,
}

package types

// DetectionMethod identifies which scanner variant produced a usage match.
type DetectionMethod string

const (
	// DetectionRegex marks matches found by the regex table scanner.
	DetectionRegex DetectionMethod = "regex"
	// DetectionAST is reserved for a future syntax-tree-based scanner.
	DetectionAST DetectionMethod = "ast"
)

// EndpointUsage is one detected reference to an API endpoint in client
// source code. One full-replace generation of usages exists per
// (repository, commit) scan; stale matches never survive a rescan.
type EndpointUsage struct {
	Path            string          `json:"path"`
	Method          string          `json:"method,omitempty"`
	FilePath        string          `json:"file_path"`
	LineNumber      int             `json:"line_number"`
	CodeContext     string          `json:"code_context"`
	Confidence      float64         `json:"confidence"`
	DetectionMethod DetectionMethod `json:"detection_method"`

	// Repository context, filled in by the scan service so a usage is
	// self-describing once it leaves the scanner.
	RepositoryName string `json:"repository_name,omitempty"`
	RepositoryURL  string `json:"repository_url,omitempty"`
	Commit         string `json:"commit,omitempty"`
}

// ScanResult summarizes one repository scan.
type ScanResult struct {
	RepositoryID   string          `json:"repository_id"`
	Commit         string          `json:"commit"`
	FilesScanned   int             `json:"files_scanned"`
	EndpointsFound int             `json:"endpoints_found"`
	Usages         []EndpointUsage `json:"usages"`
}

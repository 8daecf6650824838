package types

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// CanonicalMethods is the set of HTTP methods retained during normalization.
// Anything else on a path item (parameters, extensions, HEAD/OPTIONS) is dropped.
var CanonicalMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// NormalizedSpec is the canonical contract shape extracted from an API
// definition. Only breaking-change-relevant information survives: paths,
// methods, and required request/response fields. The representation is
// deterministic and insertion-order-independent.
type NormalizedSpec struct {
	Paths map[string]PathItem `json:"paths"`
}

// PathItem maps an upper-case HTTP method to its operation contract.
type PathItem map[string]Operation

// Operation holds the required-field contract for one method on one path.
type Operation struct {
	Request  FieldSet `json:"request"`
	Response FieldSet `json:"response"`
}

// FieldSet is a sorted, de-duplicated list of required field names.
type FieldSet struct {
	RequiredFields []string `json:"required_fields"`
}

// NewFieldSet builds a FieldSet from raw field names, de-duplicating and
// sorting so two structurally equal inputs always compare equal.
func NewFieldSet(fields []string) FieldSet {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return FieldSet{RequiredFields: out}
}

// EmptySpec returns a normalized spec with no paths.
func EmptySpec() NormalizedSpec {
	return NormalizedSpec{Paths: map[string]PathItem{}}
}

// SortedPaths returns the spec's paths in lexicographic order.
func (s NormalizedSpec) SortedPaths() []string {
	paths := make([]string, 0, len(s.Paths))
	for p := range s.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SortedMethods returns the path item's methods in lexicographic order.
func (p PathItem) SortedMethods() []string {
	methods := make([]string, 0, len(p))
	for m := range p {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// EndpointCount returns the number of paths in the spec.
func (s NormalizedSpec) EndpointCount() int {
	return len(s.Paths)
}

// HashSpec computes the SHA-256 hex digest of raw spec text. The digest is
// the basis for idempotent change detection: an unchanged document never
// creates a new version.
func HashSpec(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Package normalizer canonicalizes OpenAPI documents into the minimal
// contract shape the diff engine operates on. Only paths, methods, and
// required request/response fields survive; descriptions, examples, servers,
// and security are discarded on purpose so unrelated metadata or key
// reordering never produces spurious diffs.
package normalizer

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/specwatch/specwatch/pkg/types"
)

// Parse loads raw spec text (JSON or YAML) into an OpenAPI document.
// A failure here aborts the whole poll attempt; no partial version is
// ever created from an unparseable document.
func Parse(raw []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse spec: %w", err)
	}
	return doc, nil
}

// Normalize converts an OpenAPI document into its canonical contract shape.
// The output is deterministic: paths and methods are visited in sorted
// order, field lists are de-duplicated and sorted, and paths with no
// recognized operation are dropped entirely.
func Normalize(doc *openapi3.T) types.NormalizedSpec {
	normalized := types.EmptySpec()
	if doc == nil || doc.Paths == nil {
		return normalized
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}

		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for m := range ops {
			if types.CanonicalMethods[m] {
				methods = append(methods, m)
			}
		}
		sort.Strings(methods)

		out := types.PathItem{}
		for _, method := range methods {
			op := ops[method]
			if op == nil {
				continue
			}
			out[method] = types.Operation{
				Request:  types.NewFieldSet(requestRequiredFields(op)),
				Response: types.NewFieldSet(responseRequiredFields(op)),
			}
		}

		if len(out) > 0 {
			normalized.Paths[path] = out
		}
	}

	return normalized
}

// requestRequiredFields extracts the required field names from the request
// body's JSON schema. Prefers application/json, falling back to the first
// content type present.
func requestRequiredFields(op *openapi3.Operation) []string {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	return requiredFromContent(op.RequestBody.Value.Content)
}

// responseRequiredFields extracts the required field names from the first
// success response: code "200" when present, otherwise the lowest other
// 2xx code. No success response means no guaranteed fields.
func responseRequiredFields(op *openapi3.Operation) []string {
	if op.Responses == nil {
		return nil
	}

	responses := op.Responses.Map()
	code := successCode(responses)
	if code == "" {
		return nil
	}

	resp := responses[code]
	if resp == nil || resp.Value == nil {
		return nil
	}
	return requiredFromContent(resp.Value.Content)
}

// successCode picks the response status code to read the contract from.
func successCode(responses map[string]*openapi3.ResponseRef) string {
	if _, ok := responses["200"]; ok {
		return "200"
	}

	codes := make([]string, 0, len(responses))
	for code := range responses {
		if len(code) == 3 && code[0] == '2' {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return ""
	}
	sort.Strings(codes)
	return codes[0]
}

// requiredFromContent finds the JSON schema in a content map and returns its
// required list.
func requiredFromContent(content openapi3.Content) []string {
	if len(content) == 0 {
		return nil
	}

	media := content.Get("application/json")
	if media == nil {
		cts := make([]string, 0, len(content))
		for ct := range content {
			cts = append(cts, ct)
		}
		sort.Strings(cts)
		media = content[cts[0]]
	}

	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	return media.Schema.Value.Required
}

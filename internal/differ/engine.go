// Package differ compares two normalized spec versions and classifies every
// difference as breaking or non-breaking. Diffing always operates on the
// canonical form produced by the normalizer, never on raw spec text.
package differ

import (
	"sort"

	"github.com/specwatch/specwatch/pkg/types"
)

// Engine computes diffs between normalized specs.
type Engine struct{}

// NewEngine creates a diff engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Diff compares old and new normalized specs and returns the ordered change
// list. Changes are emitted in a fixed pass order: endpoint removals,
// endpoint additions, then per-shared-path method removals and additions,
// then per-shared-method field changes. Within each pass, paths, methods,
// and fields are visited in sorted order so the output is deterministic.
func (e *Engine) Diff(old, new types.NormalizedSpec) types.DiffResult {
	changes := []types.ChangeRecord{}

	oldPaths := old.SortedPaths()
	newPaths := new.SortedPaths()

	// Removed endpoints (breaking).
	for _, path := range oldPaths {
		if _, ok := new.Paths[path]; !ok {
			changes = append(changes, types.ChangeRecord{
				Type: types.EndpointRemoved,
				Path: path,
			})
		}
	}

	// Added endpoints (non-breaking).
	for _, path := range newPaths {
		if _, ok := old.Paths[path]; !ok {
			changes = append(changes, types.ChangeRecord{
				Type: types.EndpointAdded,
				Path: path,
			})
		}
	}

	// Shared paths: method-level and field-level changes.
	for _, path := range oldPaths {
		newItem, ok := new.Paths[path]
		if !ok {
			continue
		}
		oldItem := old.Paths[path]

		for _, method := range oldItem.SortedMethods() {
			if _, ok := newItem[method]; !ok {
				changes = append(changes, types.ChangeRecord{
					Type:   types.MethodRemoved,
					Path:   path,
					Method: method,
				})
			}
		}

		for _, method := range newItem.SortedMethods() {
			if _, ok := oldItem[method]; !ok {
				changes = append(changes, types.ChangeRecord{
					Type:   types.MethodAdded,
					Path:   path,
					Method: method,
				})
			}
		}

		for _, method := range oldItem.SortedMethods() {
			newOp, ok := newItem[method]
			if !ok {
				continue
			}
			oldOp := oldItem[method]

			changes = append(changes, diffFields(
				oldOp.Request.RequiredFields, newOp.Request.RequiredFields,
				path, method,
				types.RequiredRequestFieldAdded, types.RequiredRequestFieldRemoved,
			)...)
			changes = append(changes, diffFields(
				oldOp.Response.RequiredFields, newOp.Response.RequiredFields,
				path, method,
				types.RequiredResponseFieldAdded, types.RequiredResponseFieldRemoved,
			)...)
		}
	}

	breaking := false
	for _, c := range changes {
		if c.Type.IsBreaking() {
			breaking = true
			break
		}
	}

	return types.DiffResult{Breaking: breaking, Changes: changes}
}

// diffFields emits removed-then-added field changes for one operation, each
// group in sorted field order.
func diffFields(oldFields, newFields []string, path, method string, addedType, removedType types.ChangeType) []types.ChangeRecord {
	oldSet := make(map[string]bool, len(oldFields))
	for _, f := range oldFields {
		oldSet[f] = true
	}
	newSet := make(map[string]bool, len(newFields))
	for _, f := range newFields {
		newSet[f] = true
	}

	var changes []types.ChangeRecord

	var removed []string
	for f := range oldSet {
		if !newSet[f] {
			removed = append(removed, f)
		}
	}
	sort.Strings(removed)
	for _, f := range removed {
		changes = append(changes, types.ChangeRecord{
			Type:   removedType,
			Path:   path,
			Method: method,
			Field:  f,
		})
	}

	var added []string
	for f := range newSet {
		if !oldSet[f] {
			added = append(added, f)
		}
	}
	sort.Strings(added)
	for _, f := range added {
		changes = append(changes, types.ChangeRecord{
			Type:   addedType,
			Path:   path,
			Method: method,
			Field:  f,
		})
	}

	return changes
}

package differ

import (
	"github.com/specwatch/specwatch/pkg/types"
)

// changeSeverity maps each breaking change type to its blast radius. Types
// not in the map (the non-breaking additions and request field removals)
// classify as medium when asked.
var changeSeverity = map[types.ChangeType]types.Severity{
	types.EndpointRemoved:              types.SeverityCritical,
	types.MethodRemoved:                types.SeverityCritical,
	types.RequiredRequestFieldAdded:    types.SeverityHigh,
	types.RequiredResponseFieldRemoved: types.SeverityHigh,
}

// ClassifySeverity returns the severity for a single change type.
func ClassifySeverity(ct types.ChangeType) types.Severity {
	if s, ok := changeSeverity[ct]; ok {
		return s
	}
	return types.SeverityMedium
}

// OverallSeverity returns the maximum severity across a set of changes.
// Low is the floor when the set is empty.
func OverallSeverity(changes []types.ChangeRecord) types.Severity {
	max := types.SeverityLow
	for _, c := range changes {
		max = types.MaxSeverity(max, ClassifySeverity(c.Type))
	}
	return max
}

package types

// ChangeType classifies a single difference between two spec versions.
type ChangeType string

const (
	// EndpointRemoved indicates a path disappeared from the spec.
	EndpointRemoved ChangeType = "endpoint_removed"
	// EndpointAdded indicates a new path appeared in the spec.
	EndpointAdded ChangeType = "endpoint_added"
	// MethodRemoved indicates a method disappeared from a shared path.
	MethodRemoved ChangeType = "method_removed"
	// MethodAdded indicates a new method appeared on a shared path.
	MethodAdded ChangeType = "method_added"
	// RequiredRequestFieldAdded indicates callers must now send a new field.
	RequiredRequestFieldAdded ChangeType = "required_request_field_added"
	// RequiredRequestFieldRemoved indicates a request field is no longer required.
	RequiredRequestFieldRemoved ChangeType = "required_request_field_removed"
	// RequiredResponseFieldAdded indicates responses now guarantee a new field.
	RequiredResponseFieldAdded ChangeType = "required_response_field_added"
	// RequiredResponseFieldRemoved indicates a field callers rely on is gone.
	RequiredResponseFieldRemoved ChangeType = "required_response_field_removed"
)

// IsValid checks if the ChangeType is one of the known values.
func (ct ChangeType) IsValid() bool {
	switch ct {
	case EndpointRemoved, EndpointAdded, MethodRemoved, MethodAdded,
		RequiredRequestFieldAdded, RequiredRequestFieldRemoved,
		RequiredResponseFieldAdded, RequiredResponseFieldRemoved:
		return true
	default:
		return false
	}
}

// IsBreaking reports whether this change type is classified as likely to
// break existing callers.
func (ct ChangeType) IsBreaking() bool {
	switch ct {
	case EndpointRemoved, MethodRemoved, RequiredRequestFieldAdded, RequiredResponseFieldRemoved:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChangeType.
func (ct ChangeType) String() string {
	return string(ct)
}

// ChangeRecord describes one difference between two spec versions. Records
// are immutable once produced by the diff engine.
type ChangeRecord struct {
	Type   ChangeType `json:"type"`
	Path   string     `json:"path"`
	Method string     `json:"method,omitempty"`
	Field  string     `json:"field,omitempty"`
}

// DiffResult is the ordered, classified change list between two normalized
// specs. Breaking is true iff any change has a breaking type.
type DiffResult struct {
	Breaking bool           `json:"breaking"`
	Changes  []ChangeRecord `json:"changes"`
}

// BreakingChanges returns only the changes with a breaking type, in their
// original emit order.
func (d DiffResult) BreakingChanges() []ChangeRecord {
	var out []ChangeRecord
	for _, c := range d.Changes {
		if c.Type.IsBreaking() {
			out = append(out, c)
		}
	}
	return out
}

// Severity ranks the blast radius of a change or an impact result.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordering position of the severity (low is lowest).
func (s Severity) Rank() int {
	return severityRank[s]
}

// String returns the string representation of Severity.
func (s Severity) String() string {
	return string(s)
}

// MaxSeverity returns the higher-ranked of two severities.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

package contracts

// Operation is the set of correlation identifiers shared by all telemetry
// belonging to one logical end-to-end transaction. Values are immutable:
// scopes replace the current operation with a new value, they never mutate
// one that a record already references.
type Operation struct {
	// ID identifies the top-level distributed trace.
	ID string
	// Name is the human-readable name of the top-level operation.
	Name string
	// ParentID identifies the immediate causal predecessor activity.
	ParentID string
}

// WithParent returns a copy of the operation whose ParentID is set to
// activityID. The receiver is left untouched.
func (op Operation) WithParent(activityID string) Operation {
	op.ParentID = activityID
	return op
}

// IsZero reports whether no correlation identifier is set.
func (op Operation) IsZero() bool {
	return op.ID == "" && op.Name == "" && op.ParentID == ""
}

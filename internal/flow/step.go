// Package flow implements a data-driven conversation engine: each flow is a
// static table of typed steps interpreted by one generic state machine,
// terminating in a single finalize action over the accumulated field values.
package flow

import "context"

// InputKind describes what a step expects from the user.
type InputKind int

const (
	// KindText accepts any non-empty free text.
	KindText InputKind = iota
	// KindNumber accepts a positive decimal number, stored as float64.
	KindNumber
	// KindDate accepts a date in common formats, stored as "2006-01-02".
	KindDate
	// KindEmail accepts an RFC 5322 address.
	KindEmail
	// KindSelect is driven by inline-button callbacks; text input is rejected
	// and the callback payload is stored directly.
	KindSelect
)

// Option is one selectable value for a KindSelect step.
type Option struct {
	Label string
	Value string
}

// Step is one prompt/validate/store unit of a flow.
type Step struct {
	// State is the globally unique tag identifying this step.
	State string
	// Prompt is sent when the step becomes current.
	Prompt string
	// Field is the key the validated value is stored under.
	Field string
	Kind  InputKind
	// Optional steps accept /skip, which stores "" and advances.
	Optional bool
	// Options enumerates allowed values for KindSelect steps.
	Options []Option
	// Validate overrides the default validator for the step's kind.
	Validate ValidateFunc
}

// FinalizeFunc receives the completed field data and performs the flow's
// single remote call. The returned string is the confirmation shown to the
// user; a non-nil error is surfaced verbatim instead.
type FinalizeFunc func(ctx context.Context, userID int64, data map[string]any) (string, error)

// Definition is a complete immutable flow: an ordered step sequence plus its
// finalize action. Loaded at startup, never mutated afterwards.
type Definition struct {
	Name     string
	Steps    []Step
	Finalize FinalizeFunc
}

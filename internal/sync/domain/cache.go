package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// LookupCache is a run-scoped snapshot of the reference tables, one map per
// domain keyed by warehouse business code. It is built fresh at the start of
// every sync run, frozen for the run's duration, and discarded afterwards.
type LookupCache struct {
	PensionTypes   map[string]uuid.UUID
	PensionerTypes map[string]uuid.UUID
	Products       map[string]uuid.UUID
	Branches       map[string]uuid.UUID
	PARStatuses    map[string]uuid.UUID
	AccountTypes   map[string]uuid.UUID
}

// Resolve looks a business code up in one domain map. A missing code returns
// a nil id rather than an error; drift between warehouse and reference data
// must degrade the record, not abort it.
func Resolve(codes map[string]uuid.UUID, code string) *uuid.UUID {
	if code == "" {
		return nil
	}
	if id, ok := codes[code]; ok {
		return &id
	}
	return nil
}

// TransformWarning reports a non-fatal problem encountered while transforming
// one warehouse row, typically an unresolvable business code.
type TransformWarning struct {
	ClientCode string `json:"client_code"`
	Field      string `json:"field"`
	Value      string `json:"value"`
	Reason     string `json:"reason"`
}

// String renders the warning for logs.
func (w TransformWarning) String() string {
	return fmt.Sprintf("%s: %s=%q %s", w.ClientCode, w.Field, w.Value, w.Reason)
}

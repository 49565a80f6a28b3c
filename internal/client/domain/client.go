// Package domain defines the core client domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/errors"
)

// Sync source tags recording where a client record originated.
const (
	// SourceWarehouse marks records ingested from the analytical warehouse.
	SourceWarehouse = "warehouse"
	// SourceManual marks records entered by operators.
	SourceManual = "manual"
)

// Client represents a pensioner client in the operational store.
// Records are keyed by ClientCode, the warehouse business identifier; the
// reference ids are surrogate keys resolved during sync and nil when the
// warehouse code had no match in the internal reference data.
type Client struct {
	ID            uuid.UUID
	ClientCode    string
	PensionNumber string
	FullName      string
	BirthDate     *time.Time
	PhoneNumber   string
	MobileNumber  string

	PensionTypeID   *uuid.UUID
	PensionerTypeID *uuid.UUID
	ProductID       *uuid.UUID
	BranchID        *uuid.UUID
	PARStatusID     *uuid.UUID
	AccountTypeID   *uuid.UUID

	OverdueAmount float64
	LoanStatus    string
	SyncSource    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertResult reports the outcome of persisting a client record.
type UpsertResult struct {
	ID         uuid.UUID
	WasCreated bool
}

// Domain-specific errors for client operations.
var (
	// ErrClientNotFound indicates the requested client does not exist.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrClientCodeRequired indicates the warehouse row carried no client code.
	ErrClientCodeRequired = errors.Wrap(errors.ErrInvalidInput, "client code is required")
)

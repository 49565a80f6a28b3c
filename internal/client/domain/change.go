package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SyncChange records one field-level difference detected while syncing a
// client record. Entries are append-only and never mutated after creation.
type SyncChange struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Field     string
	OldValue  *string
	NewValue  *string
	Source    string
	CreatedAt time.Time
}

// Diff compares an existing client record with its incoming replacement and
// returns one SyncChange per field whose value actually changed.
//
// A nil existing record is a creation and produces no entries; creations are
// tracked through the sync job's created counter instead. Immutable
// identifiers (id, client code) are never part of the comparison set.
func Diff(existing, incoming *Client) []SyncChange {
	if existing == nil || incoming == nil {
		return nil
	}

	fields := []struct {
		name     string
		oldValue *string
		newValue *string
	}{
		{"pension_number", strValue(existing.PensionNumber), strValue(incoming.PensionNumber)},
		{"full_name", strValue(existing.FullName), strValue(incoming.FullName)},
		{"birth_date", dateValue(existing.BirthDate), dateValue(incoming.BirthDate)},
		{"phone_number", strValue(existing.PhoneNumber), strValue(incoming.PhoneNumber)},
		{"mobile_number", strValue(existing.MobileNumber), strValue(incoming.MobileNumber)},
		{"pension_type_id", idValue(existing.PensionTypeID), idValue(incoming.PensionTypeID)},
		{"pensioner_type_id", idValue(existing.PensionerTypeID), idValue(incoming.PensionerTypeID)},
		{"product_id", idValue(existing.ProductID), idValue(incoming.ProductID)},
		{"branch_id", idValue(existing.BranchID), idValue(incoming.BranchID)},
		{"par_status_id", idValue(existing.PARStatusID), idValue(incoming.PARStatusID)},
		{"account_type_id", idValue(existing.AccountTypeID), idValue(incoming.AccountTypeID)},
		{"overdue_amount", amountValue(existing.OverdueAmount), amountValue(incoming.OverdueAmount)},
		{"loan_status", strValue(existing.LoanStatus), strValue(incoming.LoanStatus)},
		{"sync_source", strValue(existing.SyncSource), strValue(incoming.SyncSource)},
	}

	var changes []SyncChange
	for _, field := range fields {
		if equalValue(field.oldValue, field.newValue) {
			continue
		}
		changes = append(changes, SyncChange{
			ID:       uuid.Must(uuid.NewV7()),
			ClientID: existing.ID,
			Field:    field.name,
			OldValue: field.oldValue,
			NewValue: field.newValue,
			Source:   incoming.SyncSource,
		})
	}

	return changes
}

// equalValue compares two nullable field values by value, not by pointer.
func equalValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// strValue treats the empty string as an absent value so a blank warehouse
// column and a missing one diff identically.
func strValue(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func dateValue(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.DateOnly)
	return &formatted
}

func idValue(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	formatted := id.String()
	return &formatted
}

func amountValue(amount float64) *string {
	formatted := strconv.FormatFloat(amount, 'f', -1, 64)
	return &formatted
}

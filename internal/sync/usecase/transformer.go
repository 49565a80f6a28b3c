package usecase

import (
	"strings"
	"time"

	"github.com/google/uuid"

	clientDomain "github.com/pensionworks/pensync/internal/client/domain"
	"github.com/pensionworks/pensync/internal/sync/domain"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// TransformRecord normalizes one raw warehouse row into the internal client
// schema using the run's lookup cache.
//
// The function is total: it never fails for a well-typed row. Unparsable
// dates become nil, unresolvable business codes become nil references, and
// every degradation is reported through the returned warnings so reference
// data drift surfaces in logs instead of disappearing into silent nulls.
func TransformRecord(record warehouse.Record, cache *domain.LookupCache) (*clientDomain.Client, []domain.TransformWarning) {
	var warnings []domain.TransformWarning

	client := &clientDomain.Client{
		ClientCode:    strings.TrimSpace(record.ClientCode),
		PensionNumber: strings.TrimSpace(record.PensionNumber),
		FullName:      strings.TrimSpace(record.FullName),
		BirthDate:     normalizeDate(record.BirthDate),
		PhoneNumber:   strings.TrimSpace(record.PhoneNumber),
		MobileNumber:  strings.TrimSpace(record.MobileNumber),
		OverdueAmount: record.OverdueAmount,
		LoanStatus:    strings.TrimSpace(record.LoanStatus),
		SyncSource:    clientDomain.SourceWarehouse,
	}

	client.PensionTypeID = resolveCode(cache.PensionTypes, record.PensionTypeCode,
		"PENSION_TYPE_CODE", client.ClientCode, &warnings)
	client.PensionerTypeID = resolveCode(cache.PensionerTypes, record.PensionerTypeCode,
		"PENSIONER_TYPE_CODE", client.ClientCode, &warnings)
	client.ProductID = resolveCode(cache.Products, record.ProductCode,
		"PRODUCT_CODE", client.ClientCode, &warnings)
	client.BranchID = resolveCode(cache.Branches, record.BranchCode,
		"BRANCH_CODE", client.ClientCode, &warnings)
	client.PARStatusID = resolveCode(cache.PARStatuses, record.PARStatusCode,
		"PAR_STATUS_CODE", client.ClientCode, &warnings)
	client.AccountTypeID = resolveCode(cache.AccountTypes, record.AccountTypeCode,
		"ACCOUNT_TYPE_CODE", client.ClientCode, &warnings)

	return client, warnings
}

// resolveCode maps a warehouse business code to its surrogate id. An empty
// code is a plain null reference; a non-empty code with no match is null plus
// a warning, since it indicates drift between warehouse and reference data.
func resolveCode(
	codes map[string]uuid.UUID,
	rawCode, field, clientCode string,
	warnings *[]domain.TransformWarning,
) *uuid.UUID {
	code := strings.TrimSpace(rawCode)
	if code == "" {
		return nil
	}

	if id := domain.Resolve(codes, code); id != nil {
		return id
	}

	*warnings = append(*warnings, domain.TransformWarning{
		ClientCode: clientCode,
		Field:      field,
		Value:      code,
		Reason:     "has no match in reference data",
	})
	return nil
}

// dateLayouts are the string shapes different warehouse exports produce.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// normalizeDate accepts a native time.Time or an ISO-formatted string and
// normalizes both to a UTC calendar date, so the same day from either export
// shape compares equal. Anything unparsable yields nil.
func normalizeDate(value any) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return truncateToDate(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return truncateToDate(parsed)
			}
		}
		return nil
	default:
		return nil
	}
}

func truncateToDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}

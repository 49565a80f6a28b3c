// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/pensionworks/pensync/internal/validation"
)

// TriggerSyncRequest contains the parameters for starting a sync run.
type TriggerSyncRequest struct {
	BranchCodes   []string `json:"branch_codes"`
	DryRun        bool     `json:"dry_run"`
	RecordChanges bool     `json:"record_changes"`
}

// Validate checks if the trigger sync request is valid.
func (r *TriggerSyncRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BranchCodes,
			validation.Each(
				customValidation.NotBlank,
				customValidation.BranchCode,
			),
		),
	)
}

// Package dto provides data transfer objects for the record endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/compvault/internal/validation"
)

// CreateRecordRequest contains the data for a new encrypted record.
// Password may be omitted when the session is unlocked.
type CreateRecordRequest struct {
	UserID    string `json:"user_id"`
	Label     string `json:"label"`
	Plaintext string `json:"plaintext"`
	Password  string `json:"password,omitempty"`
}

// Validate checks if the create record request is valid.
func (r *CreateRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
		validation.Field(&r.Label, customValidation.NoWhitespace, validation.Length(0, 255)),
		validation.Field(&r.Plaintext, validation.Required),
		validation.Field(&r.Password, customValidation.MinPasswordLength),
	)
}

// AuditRecordsRequest configures a corrupted-record audit. A nil MaxFailures selects
// the configured default.
type AuditRecordsRequest struct {
	UserID      string `json:"user_id"`
	Password    string `json:"password,omitempty"`
	DryRun      bool   `json:"dry_run"`
	MaxFailures *int   `json:"max_failures,omitempty"`
}

// Validate checks if the audit request is valid.
func (r *AuditRecordsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.MaxFailures, validation.Min(0)),
	)
}

// ChangePasswordRequest re-encrypts every record of a user.
// OldPassword may be omitted when the session is unlocked.
type ChangePasswordRequest struct {
	UserID      string `json:"user_id"`
	OldPassword string `json:"old_password,omitempty"`
	NewPassword string `json:"new_password"`
}

// Validate checks if the change password request is valid.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.NewPassword, validation.Required, customValidation.MinPasswordLength),
	)
}

package occupancy

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFacility = errors.New("unknown facility")
	ErrMissingMoveIn   = errors.New("missing move-in date")
	ErrMissingColor    = errors.New("missing facility color")
	ErrEmptySelection  = errors.New("no facility selected")
)

// ConfigurationError aborts the whole request. It names the account and
// facility that could not be resolved.
type ConfigurationError struct {
	AccountID int64
	SiteCode  string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.AccountID != 0 {
		return fmt.Sprintf("configuration error: account %d at %q: %v", e.AccountID, e.SiteCode, e.Err)
	}
	return fmt.Sprintf("configuration error: facility %q: %v", e.SiteCode, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// WarningKind classifies a recoverable data-quality problem.
type WarningKind string

const (
	WarnInvalidCoordinates   WarningKind = "invalid_coordinates"
	WarnConflictingDuplicate WarningKind = "conflicting_duplicate"
	WarnMissingGeocode       WarningKind = "missing_geocode"
)

// Warning describes a row that was skipped or overwritten. Processing
// continues past it.
type Warning struct {
	Kind      WarningKind `json:"kind"`
	AccountID int64       `json:"account_id"`
	SiteCode  string      `json:"site_code"`
	Detail    string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: account %d at %s: %s", w.Kind, w.AccountID, w.SiteCode, w.Detail)
}

package access

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrRequestNotFound = errors.New("access request not found")
	// ErrInvalidStatus rejects targets outside approved, rejected and revoked.
	ErrInvalidStatus = errors.New("status must be approved|rejected|revoked")
	ErrNotApproved   = errors.New("not approved")
)

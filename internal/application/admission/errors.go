package admission

import "errors"

var (
	ErrInvalidEmail   = errors.New("A valid email is required")
	ErrRoleRequired   = errors.New("Role answer is required")
	ErrAlreadyGranted = errors.New("Identity already has beta access")
	ErrLedgerMissing  = errors.New("Beta capacity ledger row is missing")
)

package redemption

import "errors"

var (
	ErrCodeRequired = errors.New("Invite code is required")
	ErrInvalidEmail = errors.New("A valid email is required")
)

// errCapacityFull aborts the redemption transaction so the code increment
// rolls back when no capacity slot could be reserved.
var errCapacityFull = errors.New("capacity full")

package invites

import "errors"

var (
	ErrCodeExists       = errors.New("Invite code already exists")
	ErrCodeNotFound     = errors.New("Invite code not found")
	ErrInvalidMaxUses   = errors.New("Max uses must be at least 1")
	ErrInvalidCodeChars = errors.New("Invite code may only contain letters, numbers, and hyphens")
)

package constants

const (
	Admin     = "admin"
	Moderator = "moderator"
	Member    = "member"
)

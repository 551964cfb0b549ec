package models

// Flag values stored in the isComplete and isAdmin columns. These are also
// the literal values written to import/export files.
const (
	FlagNo  = "No"
	FlagYes = "Yes"
)

// Roles returned by login.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

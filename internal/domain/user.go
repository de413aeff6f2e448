package domain

// User is a portal user as resolved through the directory.
type User struct {
	ID           string
	Name         string
	Email        string
	WhatsApp     string
	Role         Role
	Active       bool
	PasswordHash string
}

// Student is a student record as resolved through the directory.
type Student struct {
	ID    string
	Name  string
	Class string
}

package domain

// User represents an account allowed to perform write operations.
// Users are provisioned out of band; there is no signup endpoint.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
}

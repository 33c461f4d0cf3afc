package userdb

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrQuotaExhausted = errors.New("no searches remaining")
)

type DB interface {
	UserByAPIKey(apiKey string) (*User, error)
	CreateUser(user *User) error
	ListUsers() ([]User, error)

	// ConsumeSearch decrements the user's remaining allowance by one and
	// appends a search log row as a single transaction. Returns
	// ErrQuotaExhausted when the allowance is already spent, including when
	// a concurrent search claimed the last one.
	ConsumeSearch(userID uint, query string, dataType string, resultsCount int) error

	ListSearchLogs(userID uint) ([]SearchLog, error)

	CreateTeam(team *Team) error
	ListTeams() ([]Team, error)

	Close() error
}

package quota

import (
	"errors"

	"github.com/anveshk/osintdex/db/userdb"
	"github.com/anveshk/osintdex/logger"
)

var (
	// ErrUnverified rejects accounts that have not confirmed their email.
	ErrUnverified = errors.New("please verify your email before searching")
	// ErrExhausted rejects accounts with no searches remaining.
	ErrExhausted = errors.New("search limit reached, please upgrade your plan")
)

// Store represents the user store operations the gate needs
type Store interface {
	ConsumeSearch(userID uint, query string, dataType string, resultsCount int) error
}

type Gate struct {
	logger logger.Logger
	store  Store
}

func New(logger logger.Logger, store Store) *Gate {
	return &Gate{
		logger: logger,
		store:  store,
	}
}

// Precheck applies the rejection preconditions in order: verification
// first, then remaining allowance. It reads the user's snapshot only; the
// authoritative decrement happens in Consume.
func (g *Gate) Precheck(user *userdb.User) error {
	if !user.IsVerified {
		return ErrUnverified
	}
	if user.SearchesRemaining <= 0 {
		return ErrExhausted
	}
	return nil
}

// Consume decrements the allowance and appends the search log as one
// atomic unit. When a concurrent search spent the last allowance between
// Precheck and here, the conditional update loses and ErrExhausted is
// returned, so the last allowance is never spent twice.
func (g *Gate) Consume(user *userdb.User, query string, dataType string, resultsCount int) error {
	err := g.store.ConsumeSearch(user.ID, query, dataType, resultsCount)
	if err != nil {
		if errors.Is(err, userdb.ErrQuotaExhausted) {
			g.logger.Warn("allowance spent by a concurrent search", "user_id", user.ID)
			return ErrExhausted
		}
		return err
	}
	return nil
}

package quota

import (
	"errors"
	"testing"

	"github.com/anveshk/osintdex/db/userdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	err       error
	gotUserID uint
	gotQuery  string
	gotType   string
	gotCount  int
	calls     int
}

func (f *fakeStore) ConsumeSearch(userID uint, query string, dataType string, resultsCount int) error {
	f.gotUserID = userID
	f.gotQuery = query
	f.gotType = dataType
	f.gotCount = resultsCount
	f.calls++
	return f.err
}

func TestPrecheckRejectsUnverifiedBeforeExhausted(t *testing.T) {
	assert := require.New(t)
	gate := New(logger.New(), &fakeStore{})

	// Verification is checked first even when the allowance is also spent.
	user := &userdb.User{ID: 1, IsVerified: false, SearchesRemaining: 0}
	assert.ErrorIs(gate.Precheck(user), ErrUnverified)
}

func TestPrecheckRejectsExhaustedAllowance(t *testing.T) {
	assert := require.New(t)
	gate := New(logger.New(), &fakeStore{})

	user := &userdb.User{ID: 1, IsVerified: true, SearchesRemaining: 0}
	assert.ErrorIs(gate.Precheck(user), ErrExhausted)
}

func TestPrecheckAllowsVerifiedUserWithAllowance(t *testing.T) {
	assert := require.New(t)
	gate := New(logger.New(), &fakeStore{})

	user := &userdb.User{ID: 1, IsVerified: true, SearchesRemaining: 1}
	assert.NoError(gate.Precheck(user))
}

func TestConsumePassesLogFieldsToStore(t *testing.T) {
	assert := require.New(t)

	store := &fakeStore{}
	gate := New(logger.New(), store)

	user := &userdb.User{ID: 7, IsVerified: true, SearchesRemaining: 3}
	assert.NoError(gate.Consume(user, "a@b.com", "email", 4))

	assert.Equal(1, store.calls)
	assert.Equal(uint(7), store.gotUserID)
	assert.Equal("a@b.com", store.gotQuery)
	assert.Equal("email", store.gotType)
	assert.Equal(4, store.gotCount)
}

func TestConsumeMapsLostRaceToExhausted(t *testing.T) {
	assert := require.New(t)

	store := &fakeStore{err: userdb.ErrQuotaExhausted}
	gate := New(logger.New(), store)

	user := &userdb.User{ID: 7, IsVerified: true, SearchesRemaining: 1}
	assert.ErrorIs(gate.Consume(user, "a@b.com", "", 0), ErrExhausted)
}

func TestConsumePassesThroughOtherStoreErrors(t *testing.T) {
	assert := require.New(t)

	storeErr := errors.New("disk full")
	store := &fakeStore{err: storeErr}
	gate := New(logger.New(), store)

	user := &userdb.User{ID: 7, IsVerified: true, SearchesRemaining: 1}
	err := gate.Consume(user, "a@b.com", "", 0)
	assert.ErrorIs(err, storeErr)
	assert.NotErrorIs(err, ErrExhausted)
}

package auth

import (
	"context"
	"errors"

	"backend/internal/model"
)

// AccountLookup is the slice of the account directory the authenticator
// needs: a by-email lookup across every account kind.
type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
}

// Authenticator re-validates credentials against the unified account
// directory and returns the account's prefixed authorities. The login flow
// runs it as a second authority check after the kind-scoped password
// comparison has already passed.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) ([]string, error)
}

type directoryAuthenticator struct {
	lookup AccountLookup
	hasher *PasswordHasher
}

func NewDirectoryAuthenticator(lookup AccountLookup, hasher *PasswordHasher) Authenticator {
	return &directoryAuthenticator{lookup: lookup, hasher: hasher}
}

func (a *directoryAuthenticator) Authenticate(ctx context.Context, email, password string) ([]string, error) {
	acct, err := a.lookup.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.New("auth: account not found")
	}
	if !a.hasher.Verify(password, acct.Password) {
		return nil, errors.New("auth: bad credentials")
	}
	return Authorities(acct.Role), nil
}

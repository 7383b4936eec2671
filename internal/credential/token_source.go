package credential

import (
	"fmt"

	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	store Store
}

// TokenSource exposes the stored credential as an oauth2.TokenSource.
// The store is read on every call, so a logout between requests is seen
// immediately. It returns ErrNoCredential when nothing is stored.
func TokenSource(store Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	cred, ok, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if !ok || cred.Token == "" {
		return nil, ErrNoCredential
	}
	return &oauth2.Token{AccessToken: cred.Token, TokenType: "Bearer"}, nil
}

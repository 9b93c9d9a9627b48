package taskapi

import (
	"errors"

	"golang.org/x/oauth2"

	"taskpro/internal/credstore"
	"taskpro/internal/service"
)

// StoreTokenSource returns a token source that reads the bearer token from
// the credential store on every call, so a login or logout takes effect on
// the next request without rebuilding the client.
func StoreTokenSource(store credstore.Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

type storeTokenSource struct {
	store credstore.Store
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.store.Get(credstore.KeyToken)
	if errors.Is(err, credstore.ErrNotFound) || (err == nil && access == "") {
		return nil, service.ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if refresh, err := s.store.Get(credstore.KeyRefreshToken); err == nil {
		tok.RefreshToken = refresh
	}
	return tok, nil
}

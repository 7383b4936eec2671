package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tasker/internal/credential"
	"tasker/internal/navigation"
	"tasker/internal/service"
)

// Manager performs the Anonymous <-> Authenticated transitions.
type Manager struct {
	svc    service.Service
	store  credential.Store
	nav    navigation.Controller
	logger zerolog.Logger
}

// NewManager creates a Manager. nav may be nil.
func NewManager(svc service.Service, store credential.Store, nav navigation.Controller, logger zerolog.Logger) *Manager {
	if nav == nil {
		nav = navigation.Nop
	}
	return &Manager{svc: svc, store: store, nav: nav, logger: logger}
}

// Register creates an account and sends the user to login.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	username, password, err := service.NormalizeCredentials(username, password)
	if err != nil {
		return err
	}
	if err := m.svc.Register(ctx, username, password); err != nil {
		return err
	}
	m.logger.Debug().Str("username", username).Msg("registered")
	m.nav.GoTo(navigation.Login)
	return nil
}

// Login authenticates and stores the credential. The token must carry a
// readable payload, otherwise the session would be denied on first use.
func (m *Manager) Login(ctx context.Context, username, password string) (credential.Credential, error) {
	username, password, err := service.NormalizeCredentials(username, password)
	if err != nil {
		return credential.Credential{}, err
	}

	token, err := m.svc.Login(ctx, username, password)
	if err != nil {
		return credential.Credential{}, err
	}
	if _, err := DecodePayload(token); err != nil {
		return credential.Credential{}, &service.Error{
			Kind:    service.KindMalformedResponse,
			Message: "login returned an unusable token",
			Err:     err,
		}
	}

	if err := m.store.Save(token, username); err != nil {
		return credential.Credential{}, fmt.Errorf("save credential: %w", err)
	}
	m.logger.Debug().Str("username", username).Msg("logged in")
	m.nav.GoTo(navigation.Tasks)
	return credential.Credential{Token: token, Username: username}, nil
}

// Logout clears the credential and sends the user to login.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	m.logger.Debug().Msg("logged out")
	m.nav.GoTo(navigation.Login)
	return nil
}

package session

import (
	"strings"

	"github.com/rs/zerolog"

	"tasker/internal/credential"
	"tasker/internal/navigation"
)

// absentSentinels are stringified absences left in storage by older clients.
var absentSentinels = map[string]bool{
	"":          true,
	"undefined": true,
	"null":      true,
}

// Guard decides whether the stored credential is a valid session and keeps
// protected views from rendering without one.
type Guard struct {
	store  credential.Store
	nav    navigation.Controller
	logger zerolog.Logger
}

// NewGuard creates a Guard. nav may be nil.
func NewGuard(store credential.Store, nav navigation.Controller, logger zerolog.Logger) *Guard {
	if nav == nil {
		nav = navigation.Nop
	}
	return &Guard{store: store, nav: nav, logger: logger}
}

// Store returns the guarded credential store.
func (g *Guard) Store() credential.Store { return g.store }

// Current returns the stored credential and its payload if they form a
// valid session.
func (g *Guard) Current() (credential.Credential, Payload, bool) {
	cred, ok, err := g.store.Load()
	if err != nil {
		g.logger.Debug().Err(err).Msg("credential unreadable")
		return credential.Credential{}, Payload{}, false
	}
	if !ok || absentSentinels[strings.TrimSpace(cred.Token)] {
		return credential.Credential{}, Payload{}, false
	}

	payload, err := DecodePayload(cred.Token)
	if err != nil {
		g.logger.Debug().Err(err).Msg("stored token has no readable payload")
		return credential.Credential{}, Payload{}, false
	}
	return cred, payload, true
}

// IsValid reports whether a structurally usable token is stored.
// Expiry and signature are checked by the server, not here.
func (g *Guard) IsValid() bool {
	_, _, ok := g.Current()
	return ok
}

// Admit checks the session. On denial it clears the store first and then
// calls onDenied exactly once. onDenied may be nil.
func (g *Guard) Admit(onDenied func()) bool {
	if g.IsValid() {
		return true
	}
	g.clear()
	g.logger.Debug().Msg("admission denied")
	if onDenied != nil {
		onDenied()
	}
	return false
}

// Deny ends the session: it clears the store and navigates to login.
// Called when the server rejects the credential.
func (g *Guard) Deny() {
	g.clear()
	g.logger.Debug().Msg("session ended by server rejection")
	g.nav.GoTo(navigation.Login)
}

// AdmitOrLogin is Admit with navigation to login as the denial action.
// notify, when non-nil, runs just before the navigation.
func (g *Guard) AdmitOrLogin(notify func()) bool {
	return g.Admit(func() {
		if notify != nil {
			notify()
		}
		g.nav.GoTo(navigation.Login)
	})
}

func (g *Guard) clear() {
	if err := g.store.Clear(); err != nil {
		g.logger.Warn().Err(err).Msg("failed to clear credential")
	}
}

package auth

import (
	"errors"
	"fmt"
	"strings"

	"crediario-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyPin   = errors.New("por favor, digite seu PIN")
	ErrInvalidPin = errors.New("PIN inválido")
)

// CredentialStore resolves a PIN to one of the known identities.
type CredentialStore interface {
	Lookup(pin string) (domain.Identity, bool)
}

type storedIdentity struct {
	pinHash     []byte
	displayName string
	role        domain.Role
}

// StaticStore is a fixed identity table. Only bcrypt hashes of the PINs are
// kept in memory.
type StaticStore struct {
	entries []storedIdentity
}

// NewStaticStore hashes the PINs of the given identities.
func NewStaticStore(identities ...domain.Identity) (*StaticStore, error) {
	s := &StaticStore{entries: make([]storedIdentity, 0, len(identities))}
	for _, id := range identities {
		if strings.TrimSpace(id.Pin) == "" {
			return nil, fmt.Errorf("identity %q has empty pin", id.DisplayName)
		}
		if !id.Role.Valid() {
			return nil, fmt.Errorf("identity %q has invalid role %q", id.DisplayName, id.Role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(id.Pin), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash pin: %w", err)
		}
		s.entries = append(s.entries, storedIdentity{pinHash: hash, displayName: id.DisplayName, role: id.Role})
	}
	return s, nil
}

func (s *StaticStore) Lookup(pin string) (domain.Identity, bool) {
	if pin == "" {
		return domain.Identity{}, false
	}
	for _, e := range s.entries {
		if bcrypt.CompareHashAndPassword(e.pinHash, []byte(pin)) == nil {
			return domain.Identity{Pin: pin, DisplayName: e.displayName, Role: e.role}, true
		}
	}
	return domain.Identity{}, false
}

// Authenticate maps a PIN to an identity.
func Authenticate(store CredentialStore, pin string) (domain.Identity, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return domain.Identity{}, ErrEmptyPin
	}
	id, ok := store.Lookup(pin)
	if !ok {
		return domain.Identity{}, ErrInvalidPin
	}
	return id, nil
}

// Matches reports whether pin, name and role jointly identify a known user.
func Matches(store CredentialStore, pin, name string, role domain.Role) (domain.Identity, bool) {
	if pin == "" || name == "" || role == "" {
		return domain.Identity{}, false
	}
	id, ok := store.Lookup(pin)
	if !ok || id.DisplayName != name || id.Role != role {
		return domain.Identity{}, false
	}
	return id, true
}

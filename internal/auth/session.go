package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"crediario-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const CookieName = "crediario_session"

var ErrNoSession = errors.New("sessão ausente ou inválida")

// Sessions persists a logged-in identity on the client as a signed token
// carrying three independent claims: pin, name and role. The ledger backend
// authenticates every call with the plaintext PIN, so the pin claim is sealed
// with a key derived from Secret instead of being hashed.
type Sessions struct {
	Secret []byte
	TTL    time.Duration
	Store  CredentialStore
	Now    func() time.Time
}

func (s Sessions) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Save issues a session token for id.
func (s Sessions) Save(id domain.Identity) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.TTL)
	sealed, err := s.sealPin(id.Pin)
	if err != nil {
		return "", time.Time{}, err
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pin":  sealed,
		"name": id.DisplayName,
		"role": string(id.Role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Load restores an identity from a token. All three claims must be present
// and must jointly match a known identity.
func (s Sessions) Load(tokenStr string) (domain.Identity, error) {
	if tokenStr == "" {
		return domain.Identity{}, ErrNoSession
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrNoSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, ErrNoSession
	}
	sealed, _ := claims["pin"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	pin, ok := s.openPin(sealed)
	if !ok {
		return domain.Identity{}, ErrNoSession
	}
	id, ok := Matches(s.Store, pin, name, domain.Role(role))
	if !ok {
		return domain.Identity{}, ErrNoSession
	}
	return id, nil
}

func (s Sessions) pinKey() *[32]byte {
	var key [32]byte
	_, _ = io.ReadFull(hkdf.New(sha256.New, s.Secret, nil, []byte("crediario session pin")), key[:])
	return &key
}

func (s Sessions) sealPin(pin string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(pin), &nonce, s.pinKey())
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s Sessions) openPin(sealed string) (string, bool) {
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) < 24 {
		return "", false
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	pin, ok := secretbox.Open(nil, box[24:], &nonce, s.pinKey())
	return string(pin), ok
}

// SetCookie stores the token on the client.
func (s Sessions) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes the session cookie.
func (s Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest reads a bearer token or the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

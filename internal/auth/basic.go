// Package auth provides HTTP Basic authentication for the mutating
// catalog endpoints.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Authentication errors.
var (
	ErrUnauthenticated    = errors.New("unauthenticated: no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// BasicAuthenticator verifies HTTP Basic credentials against
// bcrypt-hashed passwords.
type BasicAuthenticator struct {
	users map[string]string // username -> bcrypt hash
}

// NewBasicAuthenticator creates a Basic authenticator from a
// configuration string in the format "user1:hash1,user2:hash2". The
// first colon of each entry separates the username from the bcrypt
// hash (hashes contain '$' but no colons).
func NewBasicAuthenticator(usersConfig string) (*BasicAuthenticator, error) {
	trimmed := strings.TrimSpace(usersConfig)
	if trimmed == "" {
		return nil, fmt.Errorf("basic auth: users config must not be empty")
	}

	users := make(map[string]string)
	for _, entry := range strings.Split(trimmed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		idx := strings.Index(entry, ":")
		if idx < 1 || idx == len(entry)-1 {
			return nil, fmt.Errorf("basic auth: invalid entry format, expected user:hash")
		}

		users[entry[:idx]] = entry[idx+1:]
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("basic auth: no valid user entries found")
	}

	return &BasicAuthenticator{users: users}, nil
}

// Authenticate extracts Basic credentials from the request and
// verifies the password against the stored hash. It returns the
// authenticated username.
func (a *BasicAuthenticator) Authenticate(r *http.Request) (string, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return "", ErrUnauthenticated
	}

	hash, exists := a.users[username]
	if !exists {
		return "", fmt.Errorf("%w: unknown user", ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: wrong password", ErrInvalidCredentials)
	}

	return username, nil
}

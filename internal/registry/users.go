// Package registry keeps the user accounts in a JSON-backed in-memory
// list. Mutations rewrite the file under the registry lock.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"property-hierarchy/internal/auth"
	"property-hierarchy/internal/common"
)

// User is a registered account. Password is stored bcrypt-hashed.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRegistry manages user accounts
type UserRegistry struct {
	mu         sync.RWMutex
	users      []User
	dataFile   string
	bcryptCost int
}

// NewUserRegistry creates a registry backed by the given JSON file.
func NewUserRegistry(dataFile string, bcryptCost int) *UserRegistry {
	return &UserRegistry{
		dataFile:   dataFile,
		bcryptCost: bcryptCost,
	}
}

// Load reads the user list from disk; a missing file yields an empty list.
func (r *UserRegistry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			r.users = []User{}
			return nil
		}
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(&r.users)
}

// save writes the user list; callers must hold the lock.
func (r *UserRegistry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.dataFile), 0o755); err != nil {
		return err
	}
	file, err := os.Create(r.dataFile)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(r.users)
}

// Register creates a new account. Emails are unique, case-insensitive.
func (r *UserRegistry) Register(name, email, password string, isAdmin bool) (User, error) {
	if name == "" || email == "" {
		return User{}, common.ErrInvalidInputError("name and email are required")
	}
	if len(password) < 8 {
		return User{}, common.ErrInvalidInputError("password must be at least 8 characters")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := strings.ToLower(email)
	for _, u := range r.users {
		if strings.ToLower(u.Email) == normalized {
			return User{}, common.NewError(common.ErrAlreadyExists, "email already registered")
		}
	}

	hash, err := auth.HashPassword(password, r.bcryptCost)
	if err != nil {
		return User{}, common.NewErrorWithCause(common.ErrInternal, "failed to hash password", err)
	}

	user := User{
		ID:           common.GenerateID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	r.users = append(r.users, user)

	if err := r.save(); err != nil {
		r.users = r.users[:len(r.users)-1]
		return User{}, common.NewErrorWithCause(common.ErrInternal, "failed to save user", err)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (r *UserRegistry) Authenticate(email, password string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	normalized := strings.ToLower(email)
	for _, u := range r.users {
		if strings.ToLower(u.Email) == normalized {
			if auth.CheckPasswordHash(password, u.PasswordHash) {
				return u, true
			}
			return User{}, false
		}
	}
	return User{}, false
}

// GetByID returns the user with the given id.
func (r *UserRegistry) GetByID(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// All returns a copy of every registered user.
func (r *UserRegistry) All() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, len(r.users))
	copy(out, r.users)
	return out
}

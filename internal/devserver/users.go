package devserver

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an account known to the dev server.
type User struct {
	Username     string
	PasswordHash string
	Permissions  []string
}

// Users is an in-memory user table.
type Users struct {
	mu    sync.RWMutex
	byKey map[string]User
	cost  int
}

func NewUsers(cost int) *Users {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Users{byKey: map[string]User{}, cost: cost}
}

// Add hashes password and stores the user, replacing any previous entry.
func (u *Users) Add(username, password string, perms ...string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.byKey[username] = User{Username: username, PasswordHash: string(hash), Permissions: slices.Clone(perms)}
	return nil
}

// Authenticate returns the user when the password matches.
func (u *Users) Authenticate(username, password string) (User, error) {
	u.mu.RLock()
	usr, ok := u.byKey[username]
	u.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// AddFromSpec adds users written as "name:password[:perm,perm]" entries
// separated by semicolons.
func (u *Users) AddFromSpec(spec string) error {
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("invalid user entry %q", entry)
		}
		var perms []string
		if len(parts) == 3 && parts[2] != "" {
			perms = strings.Split(parts[2], ",")
		}
		if err := u.Add(parts[0], parts[1], perms...); err != nil {
			return err
		}
	}
	return nil
}

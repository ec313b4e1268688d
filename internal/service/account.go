package service

import (
	"context" // Context for cache operations
	"fmt"     // Key formatting for logs
	"sync"    // Orders cache fills against invalidations
	"time"    // Cache lifetime
	"user_service/internal/domain"
	"user_service/internal/store"

	"github.com/pkg/errors"      // Wrapping of unexpected faults
	"github.com/sirupsen/logrus" // Structured logging
)

// Domain failures, anything else returned by the service is an internal fault
var (
	ErrConflict            = errors.New("a user with specified email already exists") // Duplicate email
	ErrNotFound            = errors.New("cannot find user")                           // No matching record
	ErrBadRequest          = errors.New("required fields missing")                    // Presence check failed
	ErrBadCredentials      = errors.New("entered password is incorrect")              // Hash mismatch
	ErrMismatch            = errors.New("email / contact details incorrect")          // Re-verification failed
	ErrMissingProfileImage = errors.New("profile image required")                     // Registration without image
)

const allUsersKey = "users:all" // Cache key for the full list

// nameKey is the cache key of a lookup by name
func nameKey(name string) string { return "user:name:" + name }

// UserStore is the credential store the service owns records through
type UserStore interface {
	Create(user domain.User) (domain.User, error)
	Get(id uint) (domain.User, error)
	FindByName(name string) (domain.User, error)
	FindByEmail(email string) (domain.User, error)
	List() ([]domain.User, error)
	Update(id uint, fn func(*domain.User) error) (domain.User, error)
}

// Hasher hashes and verifies passwords
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

// Cache is an optional lookup cache, failures are logged and never returned
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RegisterInput carries the registration fields
type RegisterInput struct {
	Name        string // Login name
	Email       string // Unique email
	Contact     string // Contact number
	Password    string // Plain password
	ProfilePath string // Path of the stored profile image
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token     string // Signed session token
	ImagePath string // Profile image path, register only
}

// AccountService runs the account flows
type AccountService struct {
	store    UserStore     // Credential store
	hasher   Hasher        // Password hasher
	issuer   TokenIssuer   // Token issuer
	cache    Cache         // Lookup cache
	cacheTTL time.Duration // Lifetime of cached lookups

	// cacheMu is held shared from a store read until its cache fill, and
	// exclusively from a store write until its invalidation
	cacheMu sync.RWMutex
}

// New creates an AccountService over the given collaborators
func New(store UserStore, hasher Hasher, issuer TokenIssuer, cache Cache, cacheTTL time.Duration) *AccountService {
	return &AccountService{
		store:    store,    // Credential store
		hasher:   hasher,   // Password hasher
		issuer:   issuer,   // Token issuer
		cache:    cache,    // Lookup cache
		cacheTTL: cacheTTL, // Cache lifetime
	}
}

// EmailTaken lets the HTTP layer reject a duplicate before storing an upload
func (s *AccountService) EmailTaken(email string) bool {
	_, err := s.store.FindByEmail(email) // Register repeats the check atomically
	return err == nil
}

// Validate runs the registration presence checks that do not need the image
func (s *AccountService) Validate(in RegisterInput) error {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return ErrBadRequest // Name, email and password are required
	}
	return nil
}

// Register hashes the password, stores the user and issues a token
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.ProfilePath == "" {
		return nil, ErrMissingProfileImage // Fail fast without an image
	}
	if err := s.Validate(in); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password) // Hash outside any lock
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	s.cacheMu.Lock()
	user, err := s.store.Create(domain.User{
		Name:        in.Name,        // Login name
		Email:       in.Email,       // Email
		Contact:     in.Contact,     // Contact
		Password:    hash,           // Bcrypt hash
		ProfilePath: in.ProfilePath, // Stored image path
	})
	if err == nil {
		// A new record changes the list and, for a first-seen name, the name lookup
		s.invalidate(ctx, allUsersKey, nameKey(user.Name))
	}
	s.cacheMu.Unlock()
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, ErrConflict // Lost the race to another registration
		}
		return nil, errors.Wrap(err, "create user")
	}
	token, err := s.issuer.Issue(user) // Token embeds the full record
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,   // New user ID
		"name":    user.Name, // Login name
	}).Info("User registered")
	return &AuthResult{Token: token, ImagePath: user.ProfilePath}, nil
}

// Login checks the password of the first user registered under name
func (s *AccountService) Login(ctx context.Context, name, password string) (*AuthResult, error) {
	if name == "" || password == "" {
		return nil, ErrBadRequest // Stop before any lookup
	}
	user, err := s.store.FindByName(name) // First match only
	if err != nil {
		return nil, ErrNotFound
	}
	// Compare provided password with stored hash
	if !s.hasher.Compare(user.Password, password) {
		logrus.WithField("user_id", user.ID).Warn("Login failed: bad password")
		return nil, ErrBadCredentials
	}
	token, err := s.issuer.Issue(user) // Fresh token for the current record
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	return &AuthResult{Token: token}, nil
}

// ListAll returns every record verbatim, password hashes included
func (s *AccountService) ListAll(ctx context.Context) ([]domain.User, error) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	var cached []domain.User // Try the cache first
	if s.lookup(ctx, allUsersKey, &cached) {
		return cached, nil
	}
	users, err := s.store.List() // Fall back to the store
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	s.remember(ctx, allUsersKey, users) // Fill before any invalidation can run
	return users, nil
}

// GetByName returns the first record with the given name
func (s *AccountService) GetByName(ctx context.Context, name string) (*domain.User, error) {
	if name == "" {
		return nil, ErrBadRequest
	}
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	var cached domain.User // Try the cache first
	if s.lookup(ctx, nameKey(name), &cached) {
		return &cached, nil
	}
	user, err := s.store.FindByName(name) // Fall back to the store
	if err != nil {
		return nil, ErrNotFound
	}
	s.remember(ctx, nameKey(name), user) // Fill before any invalidation can run
	return &user, nil
}

// UpdateProfile overwrites name, email and contact, email uniqueness is not re-checked
func (s *AccountService) UpdateProfile(ctx context.Context, id uint, name, email, contact string) error {
	if _, err := s.store.Get(id); err != nil {
		return ErrNotFound // Unknown id is reported first
	}
	if name == "" || email == "" || contact == "" {
		return ErrBadRequest
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	var oldName string // Name before the update, its lookup goes stale
	_, err := s.store.Update(id, func(u *domain.User) error {
		oldName = u.Name
		u.Name = name       // New name
		u.Email = email     // New email
		u.Contact = contact // New contact
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "update profile")
	}
	s.invalidate(ctx, allUsersKey, nameKey(oldName), nameKey(name))
	logrus.WithField("user_id", id).Info("Profile updated")
	return nil
}

// UpdatePassword replaces the hash when email and contact both match the record.
// The caller's token identity is not compared with id.
func (s *AccountService) UpdatePassword(ctx context.Context, id uint, email, contact, newPassword string) error {
	if _, err := s.store.Get(id); err != nil {
		return ErrNotFound // Unknown id is reported first
	}
	if email == "" || contact == "" || newPassword == "" {
		return ErrBadRequest
	}
	hash, err := s.hasher.Hash(newPassword) // Hash outside any lock
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	// Compare and set in one store update
	updated, err := s.store.Update(id, func(u *domain.User) error {
		if u.Email != email || u.Contact != contact {
			return ErrMismatch // Leaves the hash untouched
		}
		u.Password = hash
		return nil
	})
	switch {
	case errors.Is(err, ErrMismatch):
		return ErrMismatch
	case errors.Is(err, store.ErrUserNotFound):
		return ErrNotFound
	case err != nil:
		return errors.Wrap(err, "update password")
	}
	s.invalidate(ctx, allUsersKey, nameKey(updated.Name))
	logrus.WithField("user_id", id).Info("Password changed")
	return nil
}

// lookup reads a cached value, treating cache errors as misses
func (s *AccountService) lookup(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return found
}

// remember stores a value in the cache, logging failures
func (s *AccountService) remember(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// invalidate drops cached keys, logging failures
func (s *AccountService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logrus.WithError(err).WithField("keys", fmt.Sprint(keys)).Warn("Cache invalidation failed")
	}
}

package store

import (
	"errors" // Sentinel errors
	"fmt"    // Error wrapping
	"sync"   // Guards the records
	"user_service/internal/domain"
)

// Store errors
var (
	ErrUserNotFound = errors.New("user not found")           // No record matched
	ErrEmailExists  = errors.New("email already registered") // Duplicate email at registration
)

// MemoryStore keeps users keyed by id plus their registration order
type MemoryStore struct {
	mu     sync.RWMutex          // Guards every field below
	users  map[uint]*domain.User // Records by id
	order  []uint                // Ids in registration order, for first-match lookups
	nextID uint                  // Next id to hand out, never reused
}

// NewMemoryStore returns an empty store whose first id is 1
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[uint]*domain.User), // Empty record map
		nextID: 1,                           // Ids start at 1
	}
}

// Create checks the email and appends the user under one lock
func (s *MemoryStore) Create(user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Email must not be registered yet
	if s.findLocked(func(u *domain.User) bool { return u.Email == user.Email }) != nil {
		return domain.User{}, fmt.Errorf("create %q: %w", user.Email, ErrEmailExists)
	}
	user.ID = s.nextID // Assign the next id
	s.nextID++         // Rejected creates never reach here, so they use no id
	stored := user     // Keep our own copy
	s.users[user.ID] = &stored
	s.order = append(s.order, user.ID)
	return user, nil
}

// Get returns a copy of the record with the given id
func (s *MemoryStore) Get(id uint) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id] // Direct keyed lookup
	if !ok {
		return domain.User{}, fmt.Errorf("get %d: %w", id, ErrUserNotFound)
	}
	return *u, nil
}

// FindByName returns the first registered user with the given name
func (s *MemoryStore) FindByName(name string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.findLocked(func(u *domain.User) bool { return u.Name == name })
	if u == nil {
		return domain.User{}, fmt.Errorf("find name %q: %w", name, ErrUserNotFound)
	}
	return *u, nil
}

// FindByEmail returns the user registered with the given email
func (s *MemoryStore) FindByEmail(email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.findLocked(func(u *domain.User) bool { return u.Email == email })
	if u == nil {
		return domain.User{}, fmt.Errorf("find email %q: %w", email, ErrUserNotFound)
	}
	return *u, nil
}

// List returns copies of every user in registration order
func (s *MemoryStore) List() ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.order)) // One entry per record
	for _, id := range s.order {
		out = append(out, *s.users[id])
	}
	return out, nil
}

// Update applies fn to a copy and stores it only if fn returns nil
func (s *MemoryStore) Update(id uint, fn func(*domain.User) error) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id] // Record to modify
	if !ok {
		return domain.User{}, fmt.Errorf("update %d: %w", id, ErrUserNotFound)
	}
	next := *u // Work on a copy
	if err := fn(&next); err != nil {
		return domain.User{}, err // Leave the record untouched
	}
	next.ID = id // Id is immutable
	*u = next    // Commit the change
	return next, nil
}

// findLocked scans in registration order; callers hold mu
func (s *MemoryStore) findLocked(match func(*domain.User) bool) *domain.User {
	for _, id := range s.order {
		if u := s.users[id]; match(u) {
			return u // First match wins
		}
	}
	return nil
}

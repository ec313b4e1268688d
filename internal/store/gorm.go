package store

import (
	"errors" // Error comparison
	"fmt"    // Error wrapping
	"time"   // Slow query threshold
	"user_service/internal/domain"

	"github.com/glebarez/sqlite" // Pure Go SQLite driver for GORM
	"github.com/sirupsen/logrus" // Logrus backs the GORM logger
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger configuration
)

// GormStore keeps users in a GORM database
type GormStore struct {
	db *gorm.DB // GORM handle
}

// NewSQLiteStore opens dsn with the SQLite driver and migrates the users table
func NewSQLiteStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Log slow queries
			LogLevel:                  logger.Warn,            // Warnings and errors only
			IgnoreRecordNotFoundError: true,                   // Not found is a normal outcome
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB() // Underlying pool
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Close releases the database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create checks the email and inserts the user in one transaction
func (s *GormStore) Create(user domain.User) (domain.User, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64 // Users already holding this email
		if err := tx.Model(&domain.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err // Return error to rollback
		}
		if count > 0 {
			return fmt.Errorf("create %q: %w", user.Email, ErrEmailExists)
		}
		user.ID = 0                   // Let AUTOINCREMENT assign the id
		return tx.Create(&user).Error // Insert the record
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Get returns the record with the given id
func (s *GormStore) Get(id uint) (domain.User, error) {
	var u domain.User
	if err := s.db.First(&u, id).Error; err != nil {
		return domain.User{}, notFound(err, fmt.Sprintf("get %d", id))
	}
	return u, nil
}

// FindByName returns the first registered user with the given name
func (s *GormStore) FindByName(name string) (domain.User, error) {
	var u domain.User
	// First orders by primary key, which is registration order
	if err := s.db.Where("name = ?", name).First(&u).Error; err != nil {
		return domain.User{}, notFound(err, fmt.Sprintf("find name %q", name))
	}
	return u, nil
}

// FindByEmail returns the user registered with the given email
func (s *GormStore) FindByEmail(email string) (domain.User, error) {
	var u domain.User
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		return domain.User{}, notFound(err, fmt.Sprintf("find email %q", email))
	}
	return u, nil
}

// List returns every user in registration order
func (s *GormStore) List() ([]domain.User, error) {
	users := make([]domain.User, 0) // Empty list rather than null
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update applies fn to the record and saves it only if fn returns nil
func (s *GormStore) Update(id uint, fn func(*domain.User) error) (domain.User, error) {
	var next domain.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&next, id).Error; err != nil {
			return notFound(err, fmt.Sprintf("update %d", id))
		}
		if err := fn(&next); err != nil {
			return err // Rollback, record untouched
		}
		next.ID = id                // Id is immutable
		return tx.Save(&next).Error // Write every column
	})
	if err != nil {
		return domain.User{}, err
	}
	return next, nil
}

// notFound maps GORM's not found error onto ErrUserNotFound
func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

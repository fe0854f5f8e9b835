package store

import (
	"errors"

	"account-hub/internal/models"
)

var (
	// ErrNotFound is returned when no account matches the lookup key.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when an insert or update would leave two
	// accounts sharing a normalized email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the credential store: the sole reader and writer of persisted
// account records. Implementations must serialize mutations so that two
// concurrent inserts for the same email cannot both succeed, and must flush
// durably before returning.
type Store interface {
	// FindByEmail matches case-insensitively on the normalized email.
	FindByEmail(email string) (*models.Account, error)
	// FindByID matches on the opaque account id.
	FindByID(id string) (*models.Account, error)
	// FindByIdentity matches case-insensitively against either email or full
	// name, email first. When two accounts share a normalized full name the
	// first match in storage order wins; email remains the only uniqueness key.
	FindByIdentity(identifier string) (*models.Account, error)
	// Insert persists a new account, failing with ErrDuplicateEmail when the
	// normalized email is already taken.
	Insert(acc *models.Account) error
	// Update replaces the record matching acc.ID, failing with ErrNotFound when
	// absent and ErrDuplicateEmail when the new email collides with another
	// account.
	Update(acc *models.Account) error
	// List returns all accounts in storage order.
	List() ([]models.Account, error)
	// ReplaceAll atomically swaps the whole collection (backup restore).
	ReplaceAll(accs []models.Account) error
	Close() error
}

// Package users stores user accounts in PostgreSQL. Every read and write
// carries an explicit is_active = TRUE predicate: deactivated rows are
// invisible to this package except through the storage itself.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
)

// Duplicate key errors reported by the storage engine. Both are conflicts.
var (
	ErrDuplicateUsername = fmt.Errorf("%w: duplicate username", common.ErrConflict)
	ErrDuplicateEmail    = fmt.Errorf("%w: duplicate email", common.ErrConflict)
)

var errEmptyUpdate = errors.New("empty update")

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByLogin matches either the username or the email.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	// UsernameTaken and EmailTaken ignore the row with excludeID (0 for none).
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	List(ctx context.Context, skip, limit int) ([]*models.User, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	Deactivate(ctx context.Context, id int64) error
}

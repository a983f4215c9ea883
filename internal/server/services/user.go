// Package services contains server-side business logic. UserService owns
// account creation, lookup, partial update, soft deletion, credential checks
// and token issuance. Every write runs in exactly one transaction.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/dbx"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/pagination"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/users"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer issues and verifies access tokens.
type TokenIssuer interface {
	Issue(userID int64) (*auth.AccessToken, error)
	Verify(token string) (int64, error)
}

var readOnlyTx = &sql.TxOptions{ReadOnly: true}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
	pages       *pagination.Calculator
	logger      logging.Logger

	dummyMu     sync.Mutex
	dummyDigest string
}

// NewUserService wires a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer,
	pages *pagination.Calculator, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		pages:       pages,
		logger:      logger.With("component", "user_service"),
	}
}

// fail passes categorized errors through and turns everything else into
// ErrInternal after logging it.
func (s *UserService) fail(ctx context.Context, op string, err error) error {
	for _, kind := range []error{common.ErrNotFound, common.ErrConflict, common.ErrInvalidArgument, common.ErrUnauthorized} {
		if errors.Is(err, kind) {
			return err
		}
	}
	s.logger.Error(ctx, "operation failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s", common.ErrInternal, op)
}

// Create registers a new active user. Username and email are lower-cased
// and must not belong to another active user.
func (s *UserService) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	username := models.NormalizeIdentity(in.Username)
	email := models.NormalizeIdentity(in.Email)

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.fail(ctx, "hash password", err)
	}

	user, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		taken, err := repo.UsernameTaken(ctx, username, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, common.ErrUsernameRegistered
		}

		taken, err = repo.EmailTaken(ctx, email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, common.ErrEmailRegistered
		}

		created, err := repo.Create(ctx, &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: digest,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
		})
		switch {
		case errors.Is(err, users.ErrDuplicateUsername):
			return nil, common.ErrUsernameRegistered
		case errors.Is(err, users.ErrDuplicateEmail):
			return nil, common.ErrEmailRegistered
		}
		return created, err
	})
	if err != nil {
		return nil, s.fail(ctx, "create user", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID)
	return user, nil
}

// GetByID returns the active user with the given id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get user", err)
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, models.NormalizeIdentity(username))
	if err != nil {
		return nil, s.fail(ctx, "get user by username", err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, models.NormalizeIdentity(email))
	if err != nil {
		return nil, s.fail(ctx, "get user by email", err)
	}
	return user, nil
}

// ListPage validates the page request before touching storage, then reads
// the window and the active total from one read-only snapshot.
func (s *UserService) ListPage(ctx context.Context, page, size int) (*models.UserPage, error) {
	w, err := s.pages.Window(page, size)
	if err != nil {
		return nil, err
	}

	type result struct {
		users []*models.User
		total int64
	}

	res, err := dbx.InTx(ctx, s.db, readOnlyTx, func(ctx context.Context, tx dbx.DBTX) (result, error) {
		repo := s.repomanager.Users(tx)

		list, err := repo.List(ctx, w.Skip, w.Limit)
		if err != nil {
			return result{}, err
		}
		total, err := repo.CountActive(ctx)
		if err != nil {
			return result{}, err
		}
		return result{users: list, total: total}, nil
	})
	if err != nil {
		return nil, s.fail(ctx, "list users", err)
	}

	meta := s.pages.Meta(res.total, w.Skip, w.Limit)
	return &models.UserPage{
		Users: res.users,
		Total: meta.Total,
		Page:  meta.Page,
		Size:  meta.Size,
		Pages: meta.Pages,
	}, nil
}

// Update applies a partial update. A changed username or email must not
// belong to another active user. An update without fields returns the
// current row unchanged.
func (s *UserService) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	user, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if upd.Username != nil {
			username := models.NormalizeIdentity(*upd.Username)
			if username != current.Username {
				taken, err := repo.UsernameTaken(ctx, username, id)
				if err != nil {
					return nil, err
				}
				if taken {
					return nil, common.ErrUsernameTaken
				}
			}
			upd.Username = &username
		}

		if upd.Email != nil {
			email := models.NormalizeIdentity(*upd.Email)
			if email != current.Email {
				taken, err := repo.EmailTaken(ctx, email, id)
				if err != nil {
					return nil, err
				}
				if taken {
					return nil, common.ErrEmailTaken
				}
			}
			upd.Email = &email
		}

		if upd.Empty() {
			return current, nil
		}

		updated, err := repo.Update(ctx, id, upd)
		switch {
		case errors.Is(err, users.ErrDuplicateUsername):
			return nil, common.ErrUsernameTaken
		case errors.Is(err, users.ErrDuplicateEmail):
			return nil, common.ErrEmailTaken
		}
		return updated, err
	})
	if err != nil {
		return nil, s.fail(ctx, "update user", err)
	}

	s.logger.Info(ctx, "user updated", "user_id", id)
	return user, nil
}

// Delete soft-deletes the user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).Deactivate(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, "delete user", err)
	}

	s.logger.Info(ctx, "user deactivated", "user_id", id)
	return nil
}

// Authenticate returns the active user whose username or email matches
// login and whose password verifies. Unknown users and wrong passwords both
// yield common.ErrBadCredentials; a dummy digest is checked for unknown users
// so both paths cost one bcrypt comparison.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByLogin(ctx, models.NormalizeIdentity(login))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.dummy(ctx))
			return nil, common.ErrBadCredentials
		}
		return nil, s.fail(ctx, "authenticate", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrBadCredentials
	}
	return user, nil
}

// dummy returns the digest compared against for unknown logins. A failed
// hash is logged and retried on the next call.
func (s *UserService) dummy(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyDigest == "" {
		digest, err := s.hasher.Hash("dummy-password-never-matches")
		if err != nil {
			s.logger.Error(ctx, "dummy digest", "error", err)
			return ""
		}
		s.dummyDigest = digest
	}
	return s.dummyDigest
}

// Login authenticates and issues an access token.
func (s *UserService) Login(ctx context.Context, login, password string) (*auth.AccessToken, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.fail(ctx, "issue token", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

// UserIDFromToken verifies a bearer token and returns its subject.
func (s *UserService) UserIDFromToken(token string) (int64, error) {
	return s.tokens.Verify(token)
}

// CurrentUser resolves the subject of a verified token. A token whose user
// has since been deactivated yields ErrNotFound.
func (s *UserService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.GetByID(ctx, userID)
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !s.hasher.Verify(current, user.PasswordHash) {
			return common.ErrWrongPassword
		}

		digest, err := s.hasher.Hash(next)
		if err != nil {
			return err
		}
		return repo.SetPassword(ctx, userID, digest)
	})
	if err != nil {
		return s.fail(ctx, "change password", err)
	}

	s.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

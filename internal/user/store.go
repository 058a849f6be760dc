package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/eats-api/internal/logging"
	"github.com/redmonkez12/eats-api/internal/metrics"
	"github.com/redmonkez12/eats-api/internal/password"
	"github.com/redmonkez12/eats-api/internal/verification"
)

var (
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrAlreadyVerified  = errors.New("email already verified")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidRole      = errors.New("invalid role")
	// ErrOperationFailed wraps every unexpected persistence failure
	ErrOperationFailed = errors.New("operation failed")
)

const defaultSendTimeout = 10 * time.Second

// Mailer delivers verification codes
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, code string) error
}

// Store is the credential store: it owns user mutation and drives the
// verification ledger whenever an address needs (re)confirming.
type Store struct {
	db          *bun.DB
	users       *Repository
	ledger      *verification.Ledger
	hasher      *password.Hasher
	mailer      Mailer
	logger      *logging.Logger
	sendTimeout time.Duration
}

func NewStore(
	db *bun.DB,
	ledger *verification.Ledger,
	hasher *password.Hasher,
	mailer Mailer,
	logger *logging.Logger,
	sendTimeout time.Duration,
) *Store {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Store{
		db:          db,
		users:       NewRepository(),
		ledger:      ledger,
		hasher:      hasher,
		mailer:      mailer,
		logger:      logger,
		sendTimeout: sendTimeout,
	}
}

// Register creates the account and its first verification code in one
// transaction, then mails the code. Delivery failures are only logged.
func (s *Store) Register(ctx context.Context, email, plaintext string, role Role) (int64, error) {
	if !role.Valid() {
		return 0, ErrInvalidRole
	}

	passwordHash, err := s.hash(plaintext)
	if err != nil {
		return 0, err
	}

	var (
		created *User
		code    string
	)
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := s.users.GetByEmail(ctx, tx, email)
		if err == nil {
			return ErrDuplicateEmail
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		created, err = s.users.Create(ctx, tx, email, passwordHash, role)
		if err != nil {
			return err
		}

		code, err = s.ledger.Issue(ctx, tx, created.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return 0, ErrDuplicateEmail
		}
		return 0, operationFailed("register", err)
	}
	metrics.Verifications.WithLabelValues("issued").Inc()

	s.notify(ctx, email, code)

	return created.ID, nil
}

// VerifyCredentials returns the id of the user owning email when
// plaintext matches the stored hash
func (s *Store) VerifyCredentials(ctx context.Context, email, plaintext string) (int64, error) {
	existing, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, operationFailed("verify credentials", err)
	}

	if err := s.hasher.Verify(existing.PasswordHash, plaintext); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return 0, ErrWrongCredentials
		}
		return 0, operationFailed("verify credentials", err)
	}

	if s.hasher.NeedsRehash(existing.PasswordHash) {
		s.rehash(ctx, existing.ID, plaintext)
	}

	return existing.ID, nil
}

// FindByID loads the public view of a user
func (s *Store) FindByID(ctx context.Context, id int64) (*View, error) {
	existing, err := s.users.GetByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, operationFailed("find user", err)
	}
	return existing.View(), nil
}

// UpdateEmail changes the address, clears verified and swaps the
// outstanding code for a new one, all in one transaction. The new code is
// mailed after commit.
func (s *Store) UpdateEmail(ctx context.Context, id int64, email string) error {
	var code string
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := s.users.GetByEmail(ctx, tx, email)
		if err == nil && existing.ID != id {
			return ErrDuplicateEmail
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		if err := s.users.UpdateEmail(ctx, tx, id, email); err != nil {
			return err
		}

		code, err = s.ledger.Issue(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrNotFound) {
			return err
		}
		return operationFailed("update email", err)
	}
	metrics.Verifications.WithLabelValues("issued").Inc()

	s.notify(ctx, email, code)
	return nil
}

// UpdatePassword replaces the password hash. The current password is not
// re-checked.
func (s *Store) UpdatePassword(ctx context.Context, id int64, plaintext string) error {
	passwordHash, err := s.hash(plaintext)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, s.db, id, passwordHash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return operationFailed("update password", err)
	}
	return nil
}

// VerifyEmail consumes code and marks its user verified in the same
// transaction
func (s *Store) VerifyEmail(ctx context.Context, code string) (int64, error) {
	var userID int64
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		userID, err = s.ledger.Consume(ctx, tx, code)
		if err != nil {
			return err
		}
		return s.users.MarkVerified(ctx, tx, userID)
	})
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			metrics.Verifications.WithLabelValues("not_found").Inc()
			return 0, verification.ErrNotFound
		}
		return 0, operationFailed("verify email", err)
	}

	metrics.Verifications.WithLabelValues("consumed").Inc()
	return userID, nil
}

// ResendVerification issues a fresh code for an unverified user and
// mails it
func (s *Store) ResendVerification(ctx context.Context, id int64) error {
	var (
		email string
		code  string
	)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := s.users.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing.Verified {
			return ErrAlreadyVerified
		}
		email = existing.Email

		code, err = s.ledger.Issue(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyVerified) || errors.Is(err, ErrNotFound) {
			return err
		}
		return operationFailed("resend verification", err)
	}
	metrics.Verifications.WithLabelValues("issued").Inc()

	s.notify(ctx, email, code)
	return nil
}

func (s *Store) hash(plaintext string) (string, error) {
	passwordHash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, password.ErrEmptyPassword) {
			return "", ErrPasswordRequired
		}
		return "", operationFailed("hash password", err)
	}
	return passwordHash, nil
}

// rehash upgrades a stored hash after a successful login. Failures are
// logged; the login itself already succeeded.
func (s *Store) rehash(ctx context.Context, id int64, plaintext string) {
	passwordHash, err := s.hasher.Hash(plaintext)
	if err == nil {
		err = s.users.UpdatePassword(ctx, s.db, id, passwordHash)
	}
	if err != nil {
		logging.GetLoggerFromContext(ctx).Warn("failed to upgrade password hash", "user_id", id, "error", err)
	}
}

// notify sends the verification email. The send outlives request
// cancellation but is bounded by sendTimeout; the result is reported, not
// returned as an error.
func (s *Store) notify(ctx context.Context, email, code string) bool {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sendTimeout)
	defer cancel()

	if err := s.mailer.SendVerificationEmail(sendCtx, email, code); err != nil {
		s.logger.Warn("failed to send verification email", "email", email, "error", err)
		metrics.VerificationEmails.WithLabelValues("failed").Inc()
		return false
	}

	metrics.VerificationEmails.WithLabelValues("sent").Inc()
	return true
}

func operationFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrOperationFailed, op, err)
}

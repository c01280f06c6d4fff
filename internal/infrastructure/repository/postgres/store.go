package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
	"github.com/riskibarqy/weekly-lotto/internal/platform/logging"
	"github.com/riskibarqy/weekly-lotto/internal/platform/resilience"
	"github.com/riskibarqy/weekly-lotto/internal/usecase"
)

const (
	defaultMaxAttempts = 5
	retryBackoffStep   = 15 * time.Millisecond
)

var errBeginTx = errors.New("transaction could not start")

// Store runs use case transactions with SERIALIZABLE isolation and retries
// the whole callback when Postgres reports a lost race.
type Store struct {
	db          *sqlx.DB
	maxAttempts int
	logger      *logging.Logger
	breaker     *resilience.Breaker
	repos       usecase.Repositories
}

var _ usecase.Store = (*Store)(nil)

func NewStore(db *sqlx.DB, maxAttempts int, logger *logging.Logger) *Store {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Store{
		db:          db,
		maxAttempts: maxAttempts,
		logger:      logger,
		repos:       bindRepositories(db),
	}
}

func (s *Store) Repositories() usecase.Repositories {
	return s.repos
}

// WithBreaker guards transactions with b. While b is open WithinTx fails
// fast with usecase.ErrDependencyUnavailable.
func (s *Store) WithBreaker(b *resilience.Breaker) *Store {
	s.breaker = b
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	var err error
	if s.breaker == nil {
		err = s.withRetry(ctx, fn)
	} else {
		err = s.breaker.Do(func() error { return s.withRetry(ctx, fn) }, isUnavailable)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, resilience.ErrOpen):
		s.logger.WarnContext(ctx, "database circuit open, rejecting transaction")
		return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
	case isUnavailable(err):
		return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
	default:
		return err
	}
}

func (s *Store) withRetry(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		lastErr = err
		s.logger.WarnContext(ctx, "transaction lost a concurrent race, retrying",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"pq_code", string(pqCode(err)),
		)
		if attempt == s.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return crerr.Wrap(ctx.Err(), "wait before transaction retry")
		case <-time.After(time.Duration(attempt) * retryBackoffStep):
		}
	}

	return crerr.WithSecondaryError(
		crerr.Wrapf(game.ErrConcurrentUpdate, "transaction gave up after %d attempts", s.maxAttempts),
		lastErr,
	)
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "begin transaction"), errBeginTx)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, bindRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit transaction")
	}
	return nil
}

func bindRepositories(ext sqlx.ExtContext) usecase.Repositories {
	return usecase.Repositories{
		Games:         &GameRepository{db: ext},
		Boards:        &BoardRepository{db: ext},
		Subscriptions: &SubscriptionRepository{db: ext},
		Players:       &PlayerRepository{db: ext},
	}
}

// isUnavailable reports errors that mean the database itself is unreachable,
// as opposed to a rejected statement or a lost race.
func isUnavailable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if crerr.Is(err, errBeginTx) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	code := pqCode(err)
	return len(code) >= 2 && code.Class() == classConnectionException
}

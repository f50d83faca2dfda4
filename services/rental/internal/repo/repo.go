package repo

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrOverlap is returned when the database exclusion constraint rejects a
// booking row.
var ErrOverlap = errors.New("booking overlaps an existing booking")

const pgExclusionViolation = "23P01"

type GormRepo struct {
	DB *gorm.DB

	mu    sync.Mutex
	locks map[uuid.UUID]*propertyLock
}

// propertyLock is a one-slot semaphore shared by every caller waiting on the
// same property. The entry is dropped once refs reaches zero.
type propertyLock struct {
	sem  chan struct{}
	refs int
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
		return ErrOverlap
	}
	return err
}

func (r *GormRepo) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	r.mu.Lock()
	if r.locks == nil {
		r.locks = make(map[uuid.UUID]*propertyLock)
	}
	l, ok := r.locks[id]
	if !ok {
		l = &propertyLock{sem: make(chan struct{}, 1)}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			r.unref(id, l)
		}, nil
	case <-ctx.Done():
		r.unref(id, l)
		return nil, ctx.Err()
	}
}

func (r *GormRepo) unref(id uuid.UUID, l *propertyLock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(r.locks, id)
	}
}

// WithPropertyLock runs fn in a transaction that holds the property's lock.
// Within one process the lock is a per-property semaphore; on postgres a
// transaction scoped advisory lock additionally serialises writers across
// processes.
func (r *GormRepo) WithPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(tx *gorm.DB) error) error {
	release, err := r.acquire(ctx, propertyID)
	if err != nil {
		return err
	}
	defer release()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isPostgres(tx) {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", propertyID.String()).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
}

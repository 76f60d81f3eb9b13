package db

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v4"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/xerrors"
	"gorm.io/gorm"
)

var log = logging.Logger("db")

// ErrStorageUnavailable is returned when every candidate connection string
// has been tried and failed. Callers must not retry beyond this; the HTTP
// layer reports it as a 500-class error.
var ErrStorageUnavailable = xerrors.New("storage unavailable")

// Manager owns the process-wide database handle. The first caller to Get
// establishes the connection; concurrent callers during that window observe
// the same in-flight attempt rather than racing to open duplicates.
type Manager struct {
	connStr string

	open       func(dsn string) (*gorm.DB, error)
	newBackOff func() backoff.BackOff

	sf singleflight.Group
	mu sync.RWMutex
	db *gorm.DB
}

func NewManager(connStr string) *Manager {
	return &Manager{
		connStr:    Normalize(connStr),
		open:       SetupDatabase,
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
}

// Get returns the cached handle if present and live, otherwise connects,
// caches and returns it. Errors do not poison the cache: the next call
// starts a fresh attempt.
func (m *Manager) Get(ctx context.Context) (*gorm.DB, error) {
	m.mu.RLock()
	cached := m.db
	m.mu.RUnlock()

	if cached != nil && m.alive(ctx, cached) {
		return cached, nil
	}

	v, err, _ := m.sf.Do("connect", func() (interface{}, error) {
		m.mu.RLock()
		cur := m.db
		m.mu.RUnlock()
		if cur != nil && m.alive(ctx, cur) {
			return cur, nil
		}

		db, err := m.connect(ctx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.db = db
		m.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*gorm.DB), nil
}

func (m *Manager) alive(ctx context.Context, db *gorm.DB) bool {
	sqldb, err := db.DB()
	if err != nil {
		return false
	}
	if err := sqldb.PingContext(ctx); err != nil {
		log.Warnf("cached database handle failed ping, reconnecting: %s", err)
		return false
	}
	return true
}

func (m *Manager) connect(ctx context.Context) (*gorm.DB, error) {
	var lastErr error
	for _, cand := range Candidates(m.connStr) {
		var db *gorm.DB
		op := func() error {
			d, err := m.open(cand)
			if err != nil {
				return err
			}
			db = d
			return nil
		}

		if err := backoff.Retry(op, backoff.WithContext(m.newBackOff(), ctx)); err != nil {
			lastErr = err
			log.Warnf("connection attempt failed for %s: %s", Redact(cand), err)
			continue
		}

		log.Infof("database connected using %s", Redact(cand))
		return db, nil
	}
	return nil, xerrors.Errorf("%w: %v", ErrStorageUnavailable, lastErr)
}

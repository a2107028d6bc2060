package cache

import (
	"context"
	"database/sql"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// Preparer creates prepared statements, e.g. *sql.DB or database.StdDatabase.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// entry is a cached statement. It is closed once it has left the cache and
// no caller holds it any more.
type entry struct {
	query   string
	stmt    *sql.Stmt
	refs    int
	evicted bool
}

// StatementCache keeps the most recently used prepared statements, keyed by
// the fingerprint of their SQL. Statements handed out by GetOrPrepare stay
// open until released, even if they are evicted in the meantime.
type StatementCache struct {
	cache *lru.Cache[uint64, *entry]
	mu    sync.Mutex

	closeStmt func(*sql.Stmt) error
}

func NewStatementCache(size int) (*StatementCache, error) {
	s := &StatementCache{
		closeStmt: (*sql.Stmt).Close,
	}
	// called by Add and Purge, always with s.mu held
	cache, err := lru.NewWithEvict(size, func(_ uint64, e *entry) {
		s.retire(e)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "statement cache size %d", size)
	}
	s.cache = cache
	return s, nil
}

// GetOrPrepare returns the cached statement for query, preparing and caching
// it through p on a miss. The caller must call release once it is done with
// the statement; release may be called more than once.
func (s *StatementCache) GetOrPrepare(ctx context.Context, p Preparer, query string) (*sql.Stmt, func(), error) {
	key := Fingerprint(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.cache.Get(key); ok && e.query == query {
		return e.stmt, s.acquire(e), nil
	}

	stmt, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	// Add does not evict on a colliding fingerprint, so retire the old entry here
	if old, ok := s.cache.Peek(key); ok {
		s.retire(old)
	}
	e := &entry{query: query, stmt: stmt}
	release := s.acquire(e)
	s.cache.Add(key, e)
	return stmt, release, nil
}

// acquire takes a reference on e. Must be called with s.mu held.
func (s *StatementCache) acquire(e *entry) func() {
	e.refs++

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			e.refs--
			if e.evicted && e.refs == 0 {
				_ = s.closeStmt(e.stmt)
			}
		})
	}
}

// retire marks e as out of the cache and closes it if unused. Must be called
// with s.mu held.
func (s *StatementCache) retire(e *entry) {
	if e.evicted {
		return
	}
	e.evicted = true
	if e.refs == 0 {
		_ = s.closeStmt(e.stmt)
	}
}

func (s *StatementCache) Len() int {
	return s.cache.Len()
}

// Close empties the cache. Statements still held are closed on release.
func (s *StatementCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge()
	return nil
}

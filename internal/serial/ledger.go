// Package serial allocates the unique serial numbers embedded in tax
// identifiers. Uniqueness holds per fiscal memory ID within one
// ledger's persisted store; concurrent processes sharing a store path
// race, since there is no cross-process lock.
package serial

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/moadian/internal/clock"
	"github.com/rezonia/moadian/internal/model"
)

const (
	// historyWindow bounds the persisted issued-set. Serials older than
	// the window are evicted, so collision protection only covers the
	// most recent entries. Known trade-off, kept for compatibility with
	// the authority's established behavior.
	historyWindow = 1000

	serialModulus = 10_000_000_000

	defaultMaxAttempts = 50
	defaultRetryDelay  = 10 * time.Millisecond
)

// Ledger hands out serial numbers that are unique within the retained
// history window, persisting every allocation. Safe for concurrent use
// within one process.
type Ledger struct {
	fiscalID string
	store    Store
	clock    clock.Clock
	log      *zap.Logger
	rand     *rand.Rand

	maxAttempts int
	retryDelay  time.Duration

	mu  sync.Mutex
	rec *Record
}

// LedgerOption configures a Ledger
type LedgerOption func(*Ledger)

// WithClock sets the time source used to derive serial candidates.
func WithClock(c clock.Clock) LedgerOption {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithLogger sets the logger for storage degradation warnings.
func WithLogger(log *zap.Logger) LedgerOption {
	return func(l *Ledger) {
		l.log = log
	}
}

// WithMaxAttempts bounds the collision retry loop.
func WithMaxAttempts(n int) LedgerOption {
	return func(l *Ledger) {
		l.maxAttempts = n
	}
}

// WithRetryDelay sets the wait between collision retries.
func WithRetryDelay(d time.Duration) LedgerOption {
	return func(l *Ledger) {
		l.retryDelay = d
	}
}

// WithRandSource sets the randomizer source, for deterministic tests.
func WithRandSource(src rand.Source) LedgerOption {
	return func(l *Ledger) {
		l.rand = rand.New(src)
	}
}

// NewLedger creates a Ledger for one fiscal memory ID backed by store.
// An unreadable or corrupt store is a cold start: the ledger logs the
// condition, continues with empty history, and keeps serving.
func NewLedger(fiscalID string, store Store, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		fiscalID:    fiscalID,
		store:       store,
		clock:       clock.NewReal(),
		log:         zap.NewNop(),
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}

	for _, opt := range opts {
		opt(l)
	}

	rec, err := store.Load(fiscalID)
	if err != nil {
		l.log.Warn("serial history unreadable, starting with empty history",
			zap.String("fiscal_id", fiscalID),
			zap.Error(err))
		rec = nil
	}
	if rec == nil {
		rec = &Record{}
	}
	l.rec = rec

	return l
}

// Next allocates the next serial: (unix seconds mod 1e10)*100 plus a
// two-digit randomizer. On collision with retained history it waits for
// the clock to move and retries, up to the attempt bound.
func (l *Ledger) Next() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(l.retryDelay)
		}

		ts := l.clock.Now().Unix()
		candidate := (ts%serialModulus)*100 + int64(l.rand.Intn(90)+10)

		if l.issued(candidate) {
			continue
		}

		l.rec.Serials = append(l.rec.Serials, candidate)
		l.rec.LastSerial = candidate
		if len(l.rec.Serials) > historyWindow {
			l.rec.Serials = l.rec.Serials[len(l.rec.Serials)-historyWindow:]
		}

		if err := l.store.Save(l.fiscalID, l.rec); err != nil {
			// In-memory history still guards this process; persist
			// failures must not fail the caller, only be visible.
			l.log.Warn("could not persist serial history",
				zap.String("fiscal_id", l.fiscalID),
				zap.Int64("serial", candidate),
				zap.Error(err))
		}

		return candidate, nil
	}

	return 0, model.NewLedgerError("next", l.fiscalID, "could not allocate a unique serial, clock may be stuck", nil)
}

// Last returns the most recently allocated serial, or zero.
func (l *Ledger) Last() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rec.LastSerial
}

// Reset clears all allocation history for this fiscal memory ID.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rec = &Record{}
	if err := l.store.Delete(l.fiscalID); err != nil {
		return err
	}
	return nil
}

func (l *Ledger) issued(serial int64) bool {
	for _, s := range l.rec.Serials {
		if s == serial {
			return true
		}
	}
	return false
}

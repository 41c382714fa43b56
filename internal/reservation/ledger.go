package reservation

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// DefaultLockTimeout bounds how long a writer waits for a show's lock.
const DefaultLockTimeout = 2 * time.Second

// CancelPolicy decides how a second cancellation of the same booking is
// reported.
type CancelPolicy int

const (
	// CancelIdempotent returns the already cancelled booking with a nil
	// error.
	CancelIdempotent CancelPolicy = iota
	// CancelStrict rejects the second cancellation with
	// ErrAlreadyCancelled.
	CancelStrict
)

// ParseCancelPolicy maps "idempotent" and "strict" to a policy.  Unknown
// values fall back to CancelIdempotent.
func ParseCancelPolicy(s string) CancelPolicy {
	if s == "strict" {
		return CancelStrict
	}
	return CancelIdempotent
}

// Options tune a Ledger.  Zero values select the defaults.
type Options struct {
	LockTimeout  time.Duration
	CancelPolicy CancelPolicy
	Now          func() time.Time
	NewID        func() string
}

// Ledger is the authoritative record of bookings for all shows.  Reads
// are served from immutable per-show snapshots and never block.  Writes
// to one show are serialized by a FIFO lock acquired with a bounded
// timeout; writes to different shows proceed in parallel.
type Ledger struct {
	opts Options

	mu    sync.RWMutex
	shows map[uint64]*showLedger
	index map[string]uint64 // booking id -> show id
}

type showLedger struct {
	id     uint64
	sem    *semaphore.Weighted
	snap   atomic.Pointer[Snapshot]
	seeded atomic.Bool

	subMu   sync.Mutex
	subs    map[int]chan uint64
	nextSub int
}

// NewLedger returns an empty ledger.
func NewLedger(opts Options) *Ledger {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	return &Ledger{
		opts:  opts,
		shows: make(map[uint64]*showLedger),
		index: make(map[string]uint64),
	}
}

// show returns the ledger of a show, creating it on first use.
func (l *Ledger) show(showID uint64) *showLedger {
	l.mu.RLock()
	sl, ok := l.shows[showID]
	l.mu.RUnlock()
	if ok {
		return sl
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if sl, ok = l.shows[showID]; ok {
		return sl
	}
	sl = &showLedger{id: showID, sem: semaphore.NewWeighted(1), subs: make(map[int]chan uint64)}
	sl.snap.Store(emptySnapshot(showID))
	l.shows[showID] = sl
	return sl
}

// lock takes the show's write lock, giving up after LockTimeout.
func (l *Ledger) lock(ctx context.Context, sl *showLedger) error {
	ctx, cancel := context.WithTimeout(ctx, l.opts.LockTimeout)
	defer cancel()
	if err := sl.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: show %d: %w", ErrBusy, sl.id, err)
	}
	return nil
}

func (sl *showLedger) unlock() { sl.sem.Release(1) }

// publish swaps in a snapshot built from bookings and signals
// subscribers.  Callers must hold the show's write lock.
func (sl *showLedger) publish(bookings map[string]model.Booking) *Snapshot {
	next := buildSnapshot(sl.id, sl.snap.Load().Version+1, bookings)
	sl.snap.Store(next)
	sl.notify(next.Version)
	return next
}

// notify delivers the newest version to every subscriber, replacing any
// version the subscriber has not read yet.
func (sl *showLedger) notify(version uint64) {
	sl.subMu.Lock()
	defer sl.subMu.Unlock()
	for _, ch := range sl.subs {
		select {
		case ch <- version:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- version:
		default:
		}
	}
}

// Snapshot returns the current snapshot of a show.  It never blocks on
// writers.
func (l *Ledger) Snapshot(showID uint64) *Snapshot {
	return l.show(showID).snap.Load()
}

// Version is the number of committed mutations of the show.
func (l *Ledger) Version(showID uint64) uint64 {
	return l.Snapshot(showID).Version
}

// Booking looks a booking up by id across all shows.
func (l *Ledger) Booking(id string) (model.Booking, bool) {
	l.mu.RLock()
	showID, ok := l.index[id]
	l.mu.RUnlock()
	if !ok {
		return model.Booking{}, false
	}
	return l.Snapshot(showID).Booking(id)
}

// ListByShow returns every booking of a show ordered by creation time.
func (l *Ledger) ListByShow(showID uint64) []model.Booking {
	out := l.Snapshot(showID).Bookings()
	sortByCreated(out)
	return out
}

// ListByOwner returns every booking owned by the user, newest first.
func (l *Ledger) ListByOwner(ownerID uint64) []model.Booking {
	l.mu.RLock()
	shows := make([]*showLedger, 0, len(l.shows))
	for _, sl := range l.shows {
		shows = append(shows, sl)
	}
	l.mu.RUnlock()

	var out []model.Booking
	for _, sl := range shows {
		for _, b := range sl.snap.Load().bookings {
			if b.OwnerID == ownerID {
				out = append(out, b.Clone())
			}
		}
	}
	newestFirst(out)
	return out
}

func newestFirst(bs []model.Booking) {
	sortByCreated(bs)
	for i, j := 0, len(bs)-1; i < j; i, j = i+1, j-1 {
		bs[i], bs[j] = bs[j], bs[i]
	}
}

func sortByCreated(bs []model.Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].ID < bs[j].ID
		}
		return bs[i].CreatedAt.Before(bs[j].CreatedAt)
	})
}

// Subscribe registers for change signals of a show.  The channel carries
// the newest ledger version after each committed mutation; intermediate
// versions may be skipped.  The returned func unsubscribes and closes the
// channel; it is safe to call more than once.
func (l *Ledger) Subscribe(showID uint64) (<-chan uint64, func()) {
	sl := l.show(showID)
	ch := make(chan uint64, 1)
	sl.subMu.Lock()
	id := sl.nextSub
	sl.nextSub++
	sl.subs[id] = ch
	sl.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sl.subMu.Lock()
			delete(sl.subs, id)
			sl.subMu.Unlock()
			close(ch)
		})
	}
}

// Seeded reports whether Seed has completed for the show.
func (l *Ledger) Seeded(showID uint64) bool {
	return l.show(showID).seeded.Load()
}

// SeedResult summarizes a Seed call.
type SeedResult struct {
	Added   int
	Skipped []string // ids rejected for overlapping active seats or empty seat sets
}

// Seed merges bookings fetched from the backend into the show's ledger.
// Bookings already present are ignored.  Bookings of another show or
// with no seats are skipped and reported, as are active bookings that
// overlap seats already claimed.  The show is marked seeded afterwards.
func (l *Ledger) Seed(ctx context.Context, showID uint64, bookings []model.Booking) (SeedResult, error) {
	sl := l.show(showID)
	if err := l.lock(ctx, sl); err != nil {
		return SeedResult{}, err
	}
	defer sl.unlock()

	res := l.merge(sl, bookings)
	sl.seeded.Store(true)
	return res, nil
}

// Restore merges a single booking read back from the backend, typically
// one that was compacted away or whose show was never seeded.  It follows
// the rules of Seed but leaves the show's seeded state alone.  It reports
// whether the booking is now held by the ledger.
func (l *Ledger) Restore(ctx context.Context, b model.Booking) (bool, error) {
	sl := l.show(b.ShowID)
	if err := l.lock(ctx, sl); err != nil {
		return false, err
	}
	defer sl.unlock()

	l.merge(sl, []model.Booking{b})
	_, ok := sl.snap.Load().bookings[b.ID]
	return ok, nil
}

// merge adds the bookings the show does not hold yet.  Callers must hold
// the show's write lock.
func (l *Ledger) merge(sl *showLedger, bookings []model.Booking) SeedResult {
	showID := sl.id

	cur := sl.snap.Load()
	next := maps.Clone(cur.bookings)
	claimed := maps.Clone(cur.claims)

	incoming := make([]model.Booking, len(bookings))
	copy(incoming, bookings)
	sortByCreated(incoming)

	var res SeedResult
	var added []string
	for _, b := range incoming {
		if _, ok := next[b.ID]; ok {
			continue
		}
		b = b.Clone()
		b.Seats = model.UniqueSeats(b.Seats)
		if b.ShowID != showID || b.ID == "" || len(b.Seats) == 0 {
			res.Skipped = append(res.Skipped, b.ID)
			continue
		}
		if b.Active() {
			if overlaps(claimed, b.Seats) {
				res.Skipped = append(res.Skipped, b.ID)
				continue
			}
			for _, k := range b.Seats {
				claimed[k] = SeatClaim{BookingID: b.ID, OwnerID: b.OwnerID}
			}
		}
		next[b.ID] = b
		added = append(added, b.ID)
	}
	if len(added) > 0 {
		sl.publish(next)
		l.mu.Lock()
		for _, id := range added {
			l.index[id] = showID
		}
		l.mu.Unlock()
	}
	res.Added = len(added)
	return res
}

func overlaps(claimed map[model.SeatKey]SeatClaim, seats []model.SeatKey) bool {
	for _, k := range seats {
		if _, ok := claimed[k]; ok {
			return true
		}
	}
	return false
}

// Compact drops cancelled bookings whose cancellation happened before the
// cutoff.  Seat state and versions are unaffected.  It returns the number
// of bookings removed.
func (l *Ledger) Compact(ctx context.Context, before time.Time) (int, error) {
	l.mu.RLock()
	shows := make([]*showLedger, 0, len(l.shows))
	for _, sl := range l.shows {
		shows = append(shows, sl)
	}
	l.mu.RUnlock()

	removed := 0
	for _, sl := range shows {
		n, err := l.compactShow(ctx, sl, before)
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (l *Ledger) compactShow(ctx context.Context, sl *showLedger, before time.Time) (int, error) {
	cur := sl.snap.Load()
	stale := staleBookings(cur, before)
	if len(stale) == 0 {
		return 0, nil
	}
	if err := l.lock(ctx, sl); err != nil {
		return 0, err
	}
	defer sl.unlock()

	cur = sl.snap.Load()
	stale = staleBookings(cur, before)
	next := maps.Clone(cur.bookings)
	for _, id := range stale {
		delete(next, id)
	}
	// Cancelled bookings carry no claims, so the version stays put.
	sl.snap.Store(&Snapshot{ShowID: cur.ShowID, Version: cur.Version, claims: cur.claims, bookings: next})

	l.mu.Lock()
	for _, id := range stale {
		delete(l.index, id)
	}
	l.mu.Unlock()
	return len(stale), nil
}

func staleBookings(s *Snapshot, before time.Time) []string {
	var ids []string
	for id, b := range s.bookings {
		if !b.Active() && b.CancelledAt != nil && b.CancelledAt.Before(before) {
			ids = append(ids, id)
		}
	}
	return ids
}

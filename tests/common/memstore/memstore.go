//go:build unit || e2e

// Package memstore is an in-memory shared.UnitOfWork for use case tests.
// Transactions are serialized by one mutex and rolled back by restoring a
// snapshot, which gives the same guarantees the row locks give in Postgres.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/location"
	"smartpark/internal/infra"
	"smartpark/internal/infra/db"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
)

type idemKey struct {
	key    uuid.UUID
	userID uuid.UUID
}

type job struct {
	shared.NotificationJob
	LastError string
	UpdatedAt time.Time
}

type state struct {
	locations   map[uuid.UUID]*location.Location
	bookings    map[uuid.UUID]*booking.Booking
	sessions    map[string]shared.PaymentSession
	idempotency map[idemKey]shared.IdempotencyRecord
	jobs        []*job
}

func (s state) clone() state {
	out := state{
		locations:   maps.Clone(s.locations),
		bookings:    maps.Clone(s.bookings),
		sessions:    maps.Clone(s.sessions),
		idempotency: maps.Clone(s.idempotency),
		jobs:        make([]*job, len(s.jobs)),
	}
	for i, j := range s.jobs {
		cp := *j
		out.jobs[i] = &cp
	}
	return out
}

type Store struct {
	mu sync.Mutex
	st state

	// FailNextCommit makes the next Within return this error after fn succeeded.
	FailNextCommit error
}

var _ shared.UnitOfWork = (*Store)(nil)

func New() *Store {
	return &Store{st: state{
		locations:   map[uuid.UUID]*location.Location{},
		bookings:    map[uuid.UUID]*booking.Booking{},
		sessions:    map[string]shared.PaymentSession{},
		idempotency: map[idemKey]shared.IdempotencyRecord{},
	}}
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	err := fn(ctx, &memTx{s: s})
	if err == nil && s.FailNextCommit != nil {
		err, s.FailNextCommit = s.FailNextCommit, nil
	}
	if err != nil {
		s.st = snapshot
	}
	return err
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, nil)
}

// WithDB has no rollback, like statements in autocommit mode.
func (s *Store) WithDB(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &memTx{s: s})
}

// ---- seeding and inspection ------------------------------------------------

func (s *Store) PutLocation(l *location.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.locations[l.ID()] = cloneLocation(l)
}

func (s *Store) PutBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.bookings[b.ID()] = cloneBooking(b)
}

func (s *Store) PutSession(ps shared.PaymentSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.sessions[ps.SessionID] = ps
}

func (s *Store) Location(id uuid.UUID) (*location.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.st.locations[id]
	if !ok {
		return nil, false
	}
	return cloneLocation(l), true
}

func (s *Store) Booking(id uuid.UUID) (*booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.bookings[id]
	if !ok {
		return nil, false
	}
	return cloneBooking(b), true
}

func (s *Store) Bookings() []*booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Booking, 0, len(s.st.bookings))
	for _, b := range s.st.bookings {
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out
}

func (s *Store) Session(id string) (shared.PaymentSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, ok := s.st.sessions[id]
	return ps, ok
}

func (s *Store) SessionsFor(bookingID uuid.UUID) []shared.PaymentSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []shared.PaymentSession
	for _, ps := range s.st.sessions {
		if ps.BookingID == bookingID {
			out = append(out, ps)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) IdempotencyRecord(key, userID uuid.UUID) (shared.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.st.idempotency[idemKey{key, userID}]
	return r, ok
}

// Jobs returns the outbox rows in insertion order.
func (s *Store) Jobs() []shared.NotificationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shared.NotificationJob, len(s.st.jobs))
	for i, j := range s.st.jobs {
		out[i] = j.NotificationJob
	}
	return out
}

// Topics lists the topic of every outbox row in insertion order.
func (s *Store) Topics() []string {
	jobs := s.Jobs()
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Topic
	}
	return out
}

func (s *Store) JobError(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.st.jobs {
		if j.ID == id {
			return j.LastError
		}
	}
	return ""
}

// ---- transaction and repositories ------------------------------------------

type memTx struct {
	s *Store
}

func (t *memTx) Locations() shared.LocationRepository             { return locationRepo{t.s} }
func (t *memTx) Bookings() shared.BookingRepository               { return bookingRepo{t.s} }
func (t *memTx) PaymentSessions() shared.PaymentSessionRepository { return sessionRepo{t.s} }
func (t *memTx) Idempotency() shared.IdempotencyRepository        { return idempotencyRepo{t.s} }
func (t *memTx) Notifications() shared.NotificationRepository     { return notificationRepo{t.s} }
func (t *memTx) DB() db.DBTX                                      { return nil }

func notFound(msg string) error {
	return infra.NewRepoErr(infra.KindNotFound, msg)
}

type locationRepo struct{ s *Store }

func (r locationRepo) Create(_ context.Context, _ db.DBTX, l *location.Location) error {
	if _, ok := r.s.st.locations[l.ID()]; ok {
		return infra.NewRepoErr(infra.KindDuplicateKey, "location already exists")
	}
	r.s.st.locations[l.ID()] = cloneLocation(l)
	return nil
}

func (r locationRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*location.Location, error) {
	l, ok := r.s.st.locations[id]
	if !ok {
		return nil, notFound("location not found")
	}
	return cloneLocation(l), nil
}

func (r locationRepo) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*location.Location, error) {
	return r.FindByID(ctx, tx, id)
}

func (r locationRepo) Update(_ context.Context, _ db.DBTX, l *location.Location) error {
	if _, ok := r.s.st.locations[l.ID()]; !ok {
		return notFound("location not found")
	}
	r.s.st.locations[l.ID()] = cloneLocation(l)
	return nil
}

func (r locationRepo) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	if _, ok := r.s.st.locations[id]; !ok {
		return notFound("location not found")
	}
	for _, b := range r.s.st.bookings {
		if b.LocationID() == id {
			return infra.NewRepoErr(infra.KindForeignKeyViolated, "location has bookings")
		}
	}
	delete(r.s.st.locations, id)
	return nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if _, ok := r.s.st.locations[b.LocationID()]; !ok {
		return infra.NewRepoErr(infra.KindForeignKeyViolated, "unknown location")
	}
	r.s.st.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r bookingRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.s.st.bookings[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	return cloneBooking(b), nil
}

func (r bookingRepo) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	return r.FindByID(ctx, tx, id)
}

func (r bookingRepo) Update(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if _, ok := r.s.st.bookings[b.ID()]; !ok {
		return notFound("booking not found")
	}
	r.s.st.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r bookingRepo) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	if _, ok := r.s.st.bookings[id]; !ok {
		return notFound("booking not found")
	}
	delete(r.s.st.bookings, id)
	for sid, ps := range r.s.st.sessions {
		if ps.BookingID == id {
			delete(r.s.st.sessions, sid)
		}
	}
	return nil
}

func (r bookingRepo) CountOverlapping(_ context.Context, _ db.DBTX, q shared.OverlapQuery) (int, error) {
	n := 0
	for _, b := range r.s.st.bookings {
		if b.LocationID() != q.LocationID {
			continue
		}
		if q.ExcludeID != nil && b.ID() == *q.ExcludeID {
			continue
		}
		if b.HoldsCapacity(q.PendingCutoff) && b.Slot().Overlaps(q.Slot) {
			n++
		}
	}
	return n, nil
}

func (r bookingRepo) ExpirePending(_ context.Context, _ db.DBTX, cutoff, now time.Time, limit int) ([]*booking.Booking, error) {
	var candidates []*booking.Booking
	for _, b := range r.s.st.bookings {
		if b.IsExpired(cutoff) {
			candidates = append(candidates, b)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt().Before(candidates[j].CreatedAt()) })
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]*booking.Booking, 0, len(candidates))
	for _, b := range candidates {
		cp := cloneBooking(b)
		cp.Cancel(now)
		r.s.st.bookings[cp.ID()] = cp
		out = append(out, cloneBooking(cp))
	}
	return out, nil
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, _ db.DBTX, ps *shared.PaymentSession) error {
	if _, ok := r.s.st.sessions[ps.SessionID]; ok {
		return infra.NewRepoErr(infra.KindDuplicateKey, "session already recorded")
	}
	if _, ok := r.s.st.bookings[ps.BookingID]; !ok {
		return infra.NewRepoErr(infra.KindForeignKeyViolated, "unknown booking")
	}
	r.s.st.sessions[ps.SessionID] = *ps
	return nil
}

func (r sessionRepo) FindByID(_ context.Context, _ db.DBTX, sessionID string) (*shared.PaymentSession, error) {
	ps, ok := r.s.st.sessions[sessionID]
	if !ok {
		return nil, notFound("payment session not found")
	}
	return &ps, nil
}

func (r sessionRepo) FindOpenByBooking(_ context.Context, _ db.DBTX, bookingID uuid.UUID, purpose shared.PaymentPurpose) (*shared.PaymentSession, error) {
	var latest *shared.PaymentSession
	for _, ps := range r.s.st.sessions {
		if ps.BookingID != bookingID || ps.Purpose != purpose || ps.Status != shared.SessionOpen {
			continue
		}
		if latest == nil || ps.CreatedAt.After(latest.CreatedAt) {
			cp := ps
			latest = &cp
		}
	}
	if latest == nil {
		return nil, notFound("open payment session not found")
	}
	return latest, nil
}

func (r sessionRepo) Complete(_ context.Context, _ db.DBTX, sessionID string, now time.Time) (bool, error) {
	ps, ok := r.s.st.sessions[sessionID]
	if !ok || ps.Status != shared.SessionOpen {
		return false, nil
	}
	ps.Status = shared.SessionCompleted
	ps.CompletedAt = &now
	r.s.st.sessions[sessionID] = ps
	return true, nil
}

func (r sessionRepo) ExpireForBookings(_ context.Context, _ db.DBTX, bookingIDs []uuid.UUID) (int64, error) {
	var n int64
	for sid, ps := range r.s.st.sessions {
		if ps.Status == shared.SessionOpen && slices.Contains(bookingIDs, ps.BookingID) {
			ps.Status = shared.SessionExpired
			r.s.st.sessions[sid] = ps
			n++
		}
	}
	return n, nil
}

type idempotencyRepo struct{ s *Store }

func (r idempotencyRepo) TryInsert(_ context.Context, _ db.DBTX, key, userID uuid.UUID, _ string, requestHash string, now, expiresAt time.Time) (bool, error) {
	k := idemKey{key, userID}
	if existing, ok := r.s.st.idempotency[k]; ok && existing.ExpiresAt.After(now) {
		return false, nil
	}
	r.s.st.idempotency[k] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r idempotencyRepo) Get(_ context.Context, _ db.DBTX, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.s.st.idempotency[idemKey{key, userID}]
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	return &rec, nil
}

func (r idempotencyRepo) MarkCompleted(_ context.Context, _ db.DBTX, key, userID, bookingID uuid.UUID) error {
	k := idemKey{key, userID}
	rec, ok := r.s.st.idempotency[k]
	if !ok {
		return notFound("idempotency key not found")
	}
	rec.Status = shared.IdempotencyCompleted
	rec.ResultBookingID = &bookingID
	r.s.st.idempotency[k] = rec
	return nil
}

func (r idempotencyRepo) Release(_ context.Context, _ db.DBTX, key, userID uuid.UUID) error {
	k := idemKey{key, userID}
	if rec, ok := r.s.st.idempotency[k]; ok && rec.Status == shared.IdempotencyProcessing {
		delete(r.s.st.idempotency, k)
	}
	return nil
}

func (r idempotencyRepo) DeleteExpired(_ context.Context, _ db.DBTX, now time.Time) (int64, error) {
	var n int64
	for k, rec := range r.s.st.idempotency {
		if !rec.ExpiresAt.After(now) {
			delete(r.s.st.idempotency, k)
			n++
		}
	}
	return n, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind shared.JobKind, topic string, payload []byte, runAt time.Time) error {
	r.s.st.jobs = append(r.s.st.jobs, &job{
		NotificationJob: shared.NotificationJob{
			ID:      uuid.New(),
			Kind:    kind,
			Topic:   topic,
			Payload: slices.Clone(payload),
			Status:  shared.JobQueued,
			RunAt:   runAt,
		},
		UpdatedAt: runAt,
	})
	return nil
}

func (r notificationRepo) ClaimDue(_ context.Context, _ db.DBTX, now, staleBefore time.Time, limit int) ([]shared.NotificationJob, error) {
	var due []*job
	for _, j := range r.s.st.jobs {
		queued := j.Status == shared.JobQueued && !j.RunAt.After(now)
		stale := j.Status == shared.JobProcessing && j.UpdatedAt.Before(staleBefore)
		if queued || stale {
			due = append(due, j)
		}
	}
	sort.SliceStable(due, func(a, b int) bool { return due[a].RunAt.Before(due[b].RunAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]shared.NotificationJob, 0, len(due))
	for _, j := range due {
		j.Status = shared.JobProcessing
		j.Attempts++
		j.UpdatedAt = now
		out = append(out, j.NotificationJob)
	}
	return out, nil
}

func (r notificationRepo) MarkDone(_ context.Context, _ db.DBTX, jobID uuid.UUID, now time.Time) error {
	j := r.find(jobID)
	if j == nil {
		return notFound("job not found")
	}
	j.Status = shared.JobDone
	j.LastError = ""
	j.UpdatedAt = now
	return nil
}

func (r notificationRepo) Reschedule(_ context.Context, _ db.DBTX, jobID uuid.UUID, lastError string, runAt *time.Time, now time.Time) error {
	j := r.find(jobID)
	if j == nil {
		return notFound("job not found")
	}
	j.LastError = lastError
	j.UpdatedAt = now
	if runAt == nil {
		j.Status = shared.JobFailed
		return nil
	}
	j.Status = shared.JobQueued
	j.RunAt = *runAt
	return nil
}

func (r notificationRepo) find(id uuid.UUID) *job {
	for _, j := range r.s.st.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(
		b.ID(), b.LocationID(), b.UserID(),
		b.BookingDate(), b.Slot(), b.Plate(), b.Phone(), b.ContactEmail(),
		b.Status(), b.TotalAmount(), b.PaymentSessionID(),
		b.CreatedAt(), b.UpdatedAt(),
	)
}

func cloneLocation(l *location.Location) *location.Location {
	return location.ReconstructLocation(
		l.ID(), l.Address(), l.Coordinates(), l.HourlyRate(), l.Currency(), l.NumberOfSpots(),
		l.Status(), l.CreatedAt(), l.UpdatedAt(),
	)
}

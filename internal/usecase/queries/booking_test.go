//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"smartpark/internal/domain/user"
	"smartpark/internal/infra"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/queries"
	"smartpark/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingStore keeps rows newest first, like the SQL read store.
type fakeBookingStore struct {
	rows   []*queries.BookingView
	filter queries.BookingFilter
}

func (f *fakeBookingStore) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
}

func (f *fakeBookingStore) FindByUserFirstPage(_ context.Context, userID uuid.UUID, limit int32) ([]*queries.BookingView, error) {
	return f.page(userID, func(*queries.BookingView) bool { return true }, limit), nil
}

func (f *fakeBookingStore) FindByUserKeyset(_ context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingView, error) {
	after := func(r *queries.BookingView) bool {
		return r.CreatedAt.Before(lastCreatedAt) || (r.CreatedAt.Equal(lastCreatedAt) && r.ID.String() < lastID.String())
	}
	return f.page(userID, after, limit), nil
}

func (f *fakeBookingStore) FindByFilter(_ context.Context, filter queries.BookingFilter) ([]*queries.BookingView, error) {
	f.filter = filter
	return nil, nil
}

func (f *fakeBookingStore) page(userID uuid.UUID, keep func(*queries.BookingView) bool, limit int32) []*queries.BookingView {
	var out []*queries.BookingView
	for _, r := range f.rows {
		if r.UserID == userID && keep(r) && len(out) < int(limit) {
			out = append(out, r)
		}
	}
	return out
}

func TestBookingQueriesGetByID(t *testing.T) {
	owner := uuid.New()
	view := builder.NewBookingBuilder().WithUserID(owner).BuildView()
	q := queries.NewBookingQueries(&fakeBookingStore{rows: []*queries.BookingView{view}})

	cases := []struct {
		name    string
		actor   user.Actor
		id      uuid.UUID
		wantErr error
	}{
		{name: "owner", actor: user.Actor{ID: owner, Role: user.RoleCustomer}, id: view.ID},
		{name: "operator", actor: user.Actor{ID: uuid.New(), Role: user.RoleOperator}, id: view.ID},
		{name: "other customer", actor: user.Actor{ID: uuid.New(), Role: user.RoleCustomer}, id: view.ID, wantErr: queries.ErrBookingAccess},
		{name: "missing", actor: user.Actor{ID: owner, Role: user.RoleCustomer}, id: uuid.New(), wantErr: queries.ErrBookingNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := q.GetByID(context.Background(), tc.actor, tc.id)
			if tc.wantErr != nil {
				assert.True(t, errs.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, view.ID, got.ID)
		})
	}
}

func TestBookingQueriesListByUser(t *testing.T) {
	userID := uuid.New()
	store := &fakeBookingStore{}
	for i := range 5 {
		created := builder.BookingNow.Add(-time.Duration(i) * time.Hour)
		store.rows = append(store.rows, builder.NewBookingBuilder().WithUserID(userID).WithCreatedAt(created).BuildView())
	}
	store.rows = append(store.rows, builder.NewBookingBuilder().BuildView())
	q := queries.NewBookingQueries(store)

	first, next, err := q.ListByUser(context.Background(), userID, nil, 2)
	require.NoError(t, err)
	require.NotNil(t, next)
	second, next, err := q.ListByUser(context.Background(), userID, next, 2)
	require.NoError(t, err)
	require.NotNil(t, next)
	third, next, err := q.ListByUser(context.Background(), userID, next, 2)
	require.NoError(t, err)
	assert.Nil(t, next)

	var got []uuid.UUID
	for _, page := range [][]*queries.BookingView{first, second, third} {
		for _, v := range page {
			got = append(got, v.ID)
		}
	}
	var want []uuid.UUID
	for _, r := range store.rows[:5] {
		want = append(want, r.ID)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}

	_, _, err = q.ListByUser(context.Background(), userID, &queries.Cursor{After: "garbage"}, 2)
	assert.True(t, errs.Is(err, queries.ErrInvalidCursor))
}

func TestBookingQueriesListForOperator(t *testing.T) {
	store := &fakeBookingStore{}
	q := queries.NewBookingQueries(store)
	day := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := q.ListForOperator(context.Background(), queries.BookingFilter{Date: day})
	require.NoError(t, err)
	assert.Equal(t, "booked", store.filter.Status)

	_, err = q.ListForOperator(context.Background(), queries.BookingFilter{Date: day, Status: "expired"})
	assert.True(t, errs.Is(err, queries.ErrInvalidStatus))
}

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	at := time.Date(2030, 1, 1, 9, 0, 0, 123456000, time.UTC)

	gotAt, gotID, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(at, id))
	require.NoError(t, err)
	assert.True(t, at.Equal(gotAt))
	assert.Equal(t, id, gotID)

	for _, bad := range []string{"", "djE6", "not base64!"} {
		_, _, err := queries.DecodeAfterCursor(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(0))
	assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(1000))
}

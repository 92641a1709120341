package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statustrack/backend/internal/model"
	"github.com/statustrack/backend/internal/pagination"
)

type fakeStatusStore struct {
	statuses []*model.Status
	owners   map[int64]bool
	subjects map[string]int64
	nextID   int64
}

func newFakeStatusStore(ownerIDs ...int64) *fakeStatusStore {
	owners := make(map[int64]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	return &fakeStatusStore{owners: owners, subjects: make(map[string]int64)}
}

func (f *fakeStatusStore) GetUserByExternalSubject(ctx context.Context, subject string) (*model.User, error) {
	if id, ok := f.subjects[subject]; ok {
		return &model.User{ID: id}, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStatusStore) CreateStatus(ctx context.Context, title string, description *string, state string, userID int64) (*model.Status, error) {
	if !f.owners[userID] {
		return nil, &pgconn.PgError{Code: "23503"}
	}
	f.nextID++
	status := &model.Status{
		ID:          f.nextID,
		Title:       title,
		Description: description,
		State:       state,
		UserID:      userID,
	}
	f.statuses = append(f.statuses, status)
	return status, nil
}

func (f *fakeStatusStore) GetStatusByID(ctx context.Context, statusID int64) (*model.Status, error) {
	for _, s := range f.statuses {
		if s.ID == statusID {
			return s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStatusStore) matches(s *model.Status, filter model.StatusFilter) bool {
	if filter.UserID != 0 && s.UserID != filter.UserID {
		return false
	}
	if filter.State != "" && s.State != filter.State {
		return false
	}
	return true
}

func (f *fakeStatusStore) CountStatuses(ctx context.Context, filter model.StatusFilter) (int64, error) {
	var total int64
	for _, s := range f.statuses {
		if f.matches(s, filter) {
			total++
		}
	}
	return total, nil
}

func (f *fakeStatusStore) ListStatuses(ctx context.Context, filter model.StatusFilter, offset int64, limit int) ([]model.Status, error) {
	var all []model.Status
	for _, s := range f.statuses {
		if f.matches(s, filter) {
			all = append(all, *s)
		}
	}
	if offset >= int64(len(all)) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeStatusStore) UpdateStatus(ctx context.Context, statusID int64, title, description, state *string) (*model.Status, error) {
	status, err := f.GetStatusByID(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if title != nil {
		status.Title = *title
	}
	if description != nil {
		status.Description = description
	}
	if state != nil {
		status.State = *state
	}
	return status, nil
}

func (f *fakeStatusStore) DeleteStatus(ctx context.Context, statusID int64) error {
	for i, s := range f.statuses {
		if s.ID == statusID {
			f.statuses = append(f.statuses[:i], f.statuses[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newStatusService(store *fakeStatusStore) *StatusService {
	return NewStatusService(store, NewAccessEvaluator(store))
}

func seedStatus(t *testing.T, store *fakeStatusStore, title, state string, ownerID int64) *model.Status {
	t.Helper()
	status, err := store.CreateStatus(context.Background(), title, nil, state, ownerID)
	require.NoError(t, err)
	return status
}

func TestStatusCreate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(42)
	svc := newStatusService(store)

	status, err := svc.Create(ctx, userClaims("42"), model.CreateStatusRequest{Title: "  Deploy failing  "})
	require.NoError(t, err)
	assert.Equal(t, "Deploy failing", status.Title)
	assert.Equal(t, model.StateOpen, status.State)
	assert.Equal(t, int64(42), status.UserID)
}

func TestStatusCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newStatusService(newFakeStatusStore(42))

	_, err := svc.Create(ctx, userClaims("42"), model.CreateStatusRequest{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, userClaims("42"), model.CreateStatusRequest{Title: strings.Repeat("x", 201)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, userClaims("42"), model.CreateStatusRequest{Title: "T", State: "done"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatusCreateUnresolvedOwner(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(42)
	svc := newStatusService(store)

	// Opaque subject with no local mapping.
	_, err := svc.Create(ctx, userClaims("unknown-uuid"), model.CreateStatusRequest{Title: "T"})
	assert.ErrorIs(t, err, ErrUnresolvedOwner)

	// Numeric subject whose row is gone hits the foreign key.
	_, err = svc.Create(ctx, userClaims("99"), model.CreateStatusRequest{Title: "T"})
	assert.ErrorIs(t, err, ErrUnresolvedOwner)
}

func TestStatusCreateExternalSubject(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(7)
	store.subjects["ext-uuid-1"] = 7
	svc := newStatusService(store)

	status, err := svc.Create(ctx, userClaims("ext-uuid-1"), model.CreateStatusRequest{Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), status.UserID)
}

func TestStatusListOwnership(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(42, 7)
	svc := newStatusService(store)

	seedStatus(t, store, "mine open", model.StateOpen, 42)
	seedStatus(t, store, "mine closed", model.StateClosed, 42)
	seedStatus(t, store, "theirs", model.StateOpen, 7)

	params := pagination.Params{Page: 1, Size: 10}

	statuses, meta, err := svc.List(ctx, userClaims("42"), "", params)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)
	assert.Equal(t, int64(2), meta.Total)

	statuses, meta, err = svc.List(ctx, adminClaims(), "", params)
	require.NoError(t, err)
	assert.Len(t, statuses, 3)
	assert.Equal(t, int64(3), meta.Total)

	statuses, _, err = svc.List(ctx, userClaims("42"), model.StateClosed, params)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "mine closed", statuses[0].Title)
}

func TestStatusListUnmappedIdentity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(42)
	svc := newStatusService(store)
	seedStatus(t, store, "T", model.StateOpen, 42)

	// An unmapped identity owns nothing and sees an empty page.
	statuses, meta, err := svc.List(ctx, userClaims("unknown-uuid"), "", pagination.Params{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, statuses)
	assert.Equal(t, int64(0), meta.Total)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestStatusListPagination(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(42)
	svc := newStatusService(store)
	for i := 0; i < 25; i++ {
		seedStatus(t, store, "T", model.StateOpen, 42)
	}

	statuses, meta, err := svc.List(ctx, userClaims("42"), "", pagination.Params{Page: 3, Size: 10})
	require.NoError(t, err)
	assert.Len(t, statuses, 5)
	assert.Equal(t, int64(25), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	require.NotNil(t, meta.PreviousPage)
	assert.Equal(t, 2, *meta.PreviousPage)
	assert.Nil(t, meta.NextPage)
}

func TestStatusGetAccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(42, 7)
	svc := newStatusService(store)
	mine := seedStatus(t, store, "mine", model.StateOpen, 42)
	theirs := seedStatus(t, store, "theirs", model.StateOpen, 7)

	status, err := svc.Get(ctx, userClaims("42"), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", status.Title)

	_, err = svc.Get(ctx, userClaims("42"), theirs.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, adminClaims(), theirs.ID)
	assert.NoError(t, err)

	// A missing id is not-found even for a caller who could never have
	// owned it.
	_, err = svc.Get(ctx, userClaims("42"), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusUpdate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(42, 7)
	svc := newStatusService(store)
	mine := seedStatus(t, store, "before", model.StateOpen, 42)
	theirs := seedStatus(t, store, "theirs", model.StateOpen, 7)

	title := "after"
	state := model.StateInProgress
	status, err := svc.Update(ctx, userClaims("42"), mine.ID, model.UpdateStatusRequest{Title: &title, State: &state})
	require.NoError(t, err)
	assert.Equal(t, "after", status.Title)
	assert.Equal(t, model.StateInProgress, status.State)

	// Absent fields stay untouched.
	desc := "details"
	status, err = svc.Update(ctx, userClaims("42"), mine.ID, model.UpdateStatusRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "after", status.Title)
	require.NotNil(t, status.Description)
	assert.Equal(t, "details", *status.Description)

	bad := "done"
	_, err = svc.Update(ctx, userClaims("42"), mine.ID, model.UpdateStatusRequest{State: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, userClaims("42"), theirs.ID, model.UpdateStatusRequest{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, userClaims("42"), 99, model.UpdateStatusRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore(42, 7)
	svc := newStatusService(store)
	mine := seedStatus(t, store, "mine", model.StateOpen, 42)
	theirs := seedStatus(t, store, "theirs", model.StateOpen, 7)

	err := svc.Delete(ctx, userClaims("42"), theirs.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(ctx, userClaims("42"), mine.ID))
	err = svc.Delete(ctx, userClaims("42"), mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, adminClaims(), theirs.ID))
}

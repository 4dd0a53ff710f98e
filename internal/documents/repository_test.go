package documents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferlab/ragengine/pkg/postgres"
)

// fakeDB implements just enough of the postgres surface for repository tests.
type fakeDB struct {
	docs map[string]*Document
}

func newFakeDB() *fakeDB {
	return &fakeDB{docs: map[string]*Document{}}
}

func (f *fakeDB) Create(_ context.Context, value interface{}) error {
	doc := value.(*Document)
	for _, existing := range f.docs {
		if existing.URL == doc.URL {
			return postgres.ErrDuplicateKey
		}
	}
	if doc.ID == "" {
		doc.ID = "doc-" + doc.URL
	}
	if doc.Status == "" {
		doc.Status = StatusPending
	}
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDB) First(_ context.Context, dest interface{}, conditions ...interface{}) error {
	out := dest.(*Document)
	cond := conditions[0].(string)
	val := conditions[1].(string)
	for _, doc := range f.docs {
		if (cond == "id = ?" && doc.ID == val) || (cond == "url = ?" && doc.URL == val) {
			*out = *doc
			return nil
		}
	}
	return postgres.ErrRecordNotFound
}

func (f *fakeDB) FindPage(_ context.Context, dest interface{}, limit, offset int, orderBy, condition string, args ...interface{}) error {
	out := dest.(*[]Document)
	for _, doc := range f.docs {
		if condition == "" || doc.Status == args[0].(string) {
			*out = append(*out, *doc)
		}
	}
	return nil
}

func (f *fakeDB) Count(_ context.Context, _ interface{}, count *int64, condition string, args ...interface{}) error {
	for _, doc := range f.docs {
		if condition == "" || doc.Status == args[0].(string) {
			*count++
		}
	}
	return nil
}

func (f *fakeDB) UpdateWhere(_ context.Context, _ interface{}, attrs map[string]interface{}, condition string, args ...interface{}) (int64, error) {
	id := args[0].(string)
	fromStatus := args[1].(string)
	doc, ok := f.docs[id]
	if !ok || doc.Status != fromStatus {
		return 0, nil
	}
	if v, ok := attrs["status"]; ok {
		doc.Status = v.(string)
	}
	if v, ok := attrs["title"]; ok {
		doc.Title = v.(string)
	}
	if v, ok := attrs["error_message"]; ok {
		doc.ErrorMessage = v.(string)
	}
	if v, ok := attrs["chunk_count"]; ok {
		doc.ChunkCount = v.(int)
	}
	return 1, nil
}

func newTestRepository() (*Repository, *fakeDB) {
	db := newFakeDB()
	return &Repository{db: db}, db
}

func TestCreateRejectsDuplicateURL(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Document{URL: "https://example.com/a"}))

	err := repo.Create(ctx, &Document{URL: "https://example.com/a"})
	require.ErrorIs(t, err, postgres.ErrDuplicateKey)
}

func TestGetByURLNotFound(t *testing.T) {
	repo, _ := newTestRepository()

	_, err := repo.GetByURL(context.Background(), "https://nowhere.example")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStatusLifecycle(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	doc := &Document{URL: "https://example.com/doc"}
	require.NoError(t, repo.Create(ctx, doc))

	claimed, err := repo.MarkProcessing(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// a second claim on the same document must lose
	claimed, err = repo.MarkProcessing(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	done, err := repo.MarkCompleted(ctx, doc.ID, "Example Doc", 7)
	require.NoError(t, err)
	assert.True(t, done)

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "Example Doc", got.Title)
	assert.Equal(t, 7, got.ChunkCount)
	assert.True(t, got.Terminal())
}

func TestMarkFailedThenReset(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	doc := &Document{URL: "https://example.com/broken"}
	require.NoError(t, repo.Create(ctx, doc))

	_, err := repo.MarkProcessing(ctx, doc.ID)
	require.NoError(t, err)

	failed, err := repo.MarkFailed(ctx, doc.ID, "fetch: received status code 500")
	require.NoError(t, err)
	assert.True(t, failed)

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "fetch: received status code 500", got.ErrorMessage)

	reset, err := repo.Reset(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, reset)

	got, err = repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.ErrorMessage)
	assert.Zero(t, got.ChunkCount)
}

func TestMarkDispatchFailedOnlyAppliesToPending(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	doc := &Document{URL: "https://example.com/unqueued"}
	require.NoError(t, repo.Create(ctx, doc))

	failed, err := repo.MarkDispatchFailed(ctx, doc.ID, "failed to enqueue ingestion job: broker unavailable")
	require.NoError(t, err)
	assert.True(t, failed)

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "broker unavailable")

	// the failed document can now take the normal reset path
	reset, err := repo.Reset(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, reset)

	// a document already claimed by a worker is not touched
	claimed := &Document{URL: "https://example.com/claimed"}
	require.NoError(t, repo.Create(ctx, claimed))
	_, err = repo.MarkProcessing(ctx, claimed.ID)
	require.NoError(t, err)

	failed, err = repo.MarkDispatchFailed(ctx, claimed.ID, "late publish error")
	require.NoError(t, err)
	assert.False(t, failed)
}

func TestResetOnlyAppliesToFailed(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	doc := &Document{URL: "https://example.com/pending"}
	require.NoError(t, repo.Create(ctx, doc))

	reset, err := repo.Reset(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, reset)
}

func TestMarkCompletedRequiresProcessing(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	doc := &Document{URL: "https://example.com/x"}
	require.NoError(t, repo.Create(ctx, doc))

	done, err := repo.MarkCompleted(ctx, doc.ID, "X", 1)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestListFiltersByStatus(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	for _, url := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		require.NoError(t, repo.Create(ctx, &Document{URL: url}))
	}
	doc, err := repo.GetByURL(ctx, "https://a.example")
	require.NoError(t, err)
	_, err = repo.MarkProcessing(ctx, doc.ID)
	require.NoError(t, err)

	all, total, err := repo.List(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.EqualValues(t, 3, total)

	pending, total, err := repo.List(ctx, StatusPending, 10, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.EqualValues(t, 2, total)
}

package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	query := url.Values{}
	query.Set("year", "2025")
	query.Set("period", "month")

	assert.Equal(t, "revenue:/api/revenue/?period=month&year=2025", Key("/api/revenue/", query))
	assert.Equal(t, "documents:/api/documents/3/", Key("/api/documents/3/", nil))
}

func TestResource(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/api/documents/", want: "documents"},
		{path: "/api/invoice-import/imports/4/corrections/", want: "invoice-import"},
		{path: "time-entries/", want: "time-entries"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Resource(tt.path))
		})
	}
}

func TestPrefixes(t *testing.T) {
	assert.Equal(t, []string{"expenses:", "revenue:"}, Prefixes("/api/expenses/"))
	assert.Equal(t, []string{"push:"}, Prefixes("/api/push/schedules/1/send_now/"))
}

func TestNew(t *testing.T) {
	store, err := New(Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)
	require.NoError(t, store.Close())

	store, err = New(Config{Backend: BackendNone})
	require.NoError(t, err)
	assert.Nil(t, store)

	_, err = New(Config{Backend: BackendSQLite})
	require.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = New(Config{Backend: "memcached"})
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestRedisKeyNamespace(t *testing.T) {
	assert.Equal(t, "kantoor:cache:documents:/api/documents/", redisKey("documents:/api/documents/"))
}

// storeContract runs the behaviour every QueryCache must share.
func storeContract(t *testing.T, store service.QueryCache) {
	t.Helper()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "documents:/api/documents/")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "documents:/api/documents/", []byte(`{"count":1}`), time.Minute))
	require.NoError(t, store.Set(ctx, "documents:/api/documents/1/", []byte(`{"id":1}`), time.Minute))
	require.NoError(t, store.Set(ctx, "push:/api/push/groups/", []byte(`[]`), time.Minute))

	value, found, err := store.Get(ctx, "documents:/api/documents/")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"count":1}`, string(value))

	require.NoError(t, store.InvalidatePrefix(ctx, "documents:"))

	_, found, _ = store.Get(ctx, "documents:/api/documents/1/")
	assert.False(t, found)
	_, found, _ = store.Get(ctx, "push:/api/push/groups/")
	assert.True(t, found)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)

	require.NoError(t, store.Clear(ctx))
	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	defer func() { _ = store.Close() }()

	storeContract(t, store)
}

func TestMemoryExpiry(t *testing.T) {
	store := NewMemory()
	defer func() { _ = store.Close() }()

	now := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Second))

	_, found, _ := store.Get(ctx, "k")
	assert.True(t, found)

	now = now.Add(2 * time.Second)
	_, found, _ = store.Get(ctx, "k")
	assert.False(t, found)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Expired)
}

func TestMemoryCloseIsIdempotent(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	storeContract(t, store)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSQLiteExpiryAndPrune(t *testing.T) {
	store, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	now := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "leave:/api/leave/requests/", []byte("[]"), time.Second))

	now = now.Add(time.Minute)
	_, found, err := store.Get(ctx, "leave:/api/leave/requests/")
	require.NoError(t, err)
	assert.False(t, found)

	pruned, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
}

func TestSQLitePrefixIsLiteral(t *testing.T) {
	store, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "time-entries:/a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "timeXentries:/b", []byte("2"), time.Minute))

	require.NoError(t, store.InvalidatePrefix(ctx, "time_entries"))
	_, found, _ := store.Get(ctx, "timeXentries:/b")
	assert.True(t, found)
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	store, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openSQLite поднимает чистую БД в памяти с таблицей bot_users.
func openSQLite(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestInsertThenFind(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	db.now = func() time.Time { return time.Unix(1700000000, 0) }

	n, err := db.Insert(ctx, "alice", "p1", "", "", false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	byName, err := db.FindByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", byName.UserName)
	assert.Equal(t, "p1", byName.Password)
	assert.False(t, byName.Enabled, "новый бот должен быть выключен")
	assert.False(t, byName.HasTokens())
	assert.Equal(t, int64(1700000000), byName.LastUpdated.Unix())

	byID, err := db.FindByID(ctx, byName.ID)
	require.NoError(t, err)
	assert.Equal(t, byName, byID, "поиск по id и по имени должен вернуть одну и ту же запись")

	exists, err := db.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateKeepsRowCount(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	_, err := db.Insert(ctx, "alice", "p1", "", "", false)
	require.NoError(t, err)

	db.now = func() time.Time { return time.Unix(1800000000, 0) }
	n, err := db.Update(ctx, "alice", "h1", "c1", "payload")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	row, err := db.FindByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", row.SessionHash)
	assert.Equal(t, "c1", row.SessionCookie)
	assert.Equal(t, "payload", row.Data)
	assert.Equal(t, "p1", row.Password, "обновление не трогает пароль")
	assert.Equal(t, int64(1800000000), row.LastUpdated.Unix())
}

func TestUpdateMissingRow(t *testing.T) {
	db := openSQLite(t)
	n, err := db.Update(context.Background(), "ghost", "h", "c", "")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	_, err := db.Insert(ctx, "alice", "p1", "", "", false)
	require.NoError(t, err)
	_, err = db.Insert(ctx, "alice", "p2", "", "", false)
	assert.ErrorIs(t, err, ErrExists)
}

func TestFindMissing(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	_, err := db.FindByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.FindByUserName(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := db.Exists(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetCallback(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	_, err := db.Insert(ctx, "alice", "p1", "", "", false)
	require.NoError(t, err)
	require.NoError(t, db.SetCallback(ctx, "alice", "inbox"))

	row, err := db.FindByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "inbox", row.Callback)

	assert.ErrorIs(t, db.SetCallback(ctx, "ghost", "inbox"), ErrNotFound)
}

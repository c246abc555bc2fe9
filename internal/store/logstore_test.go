package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func newLogStore(t *testing.T, capacity int) (*LogStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs.json")
	return OpenLogStore(context.Background(), path, capacity, logging.Nop()), path
}

func entry(i int) models.OperationLog {
	return models.NewOperationLog(models.OpEditAccount, models.LogSuccess, fmt.Sprintf("entry-%d", i))
}

func messages(logs []models.OperationLog) []string {
	out := make([]string, len(logs))
	for i, l := range logs {
		out[i] = l.Message
	}
	return out
}

func TestLogStore_RetentionEvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	ls, path := newLogStore(t, 1000)

	for i := 0; i < 1000; i++ {
		ls.mu.Lock()
		ls.entries = append(ls.entries, entry(i))
		ls.mu.Unlock()
	}
	require.NoError(t, ls.AddLog(ctx, entry(1000)))

	logs := ls.GetLogs(ctx, 0)
	require.Len(t, logs, 1000)
	assert.Equal(t, "entry-1", logs[0].Message)
	assert.Equal(t, "entry-1000", logs[999].Message)

	reopened := OpenLogStore(ctx, path, 1000, nil)
	assert.Equal(t, 1000, reopened.Len())
}

func TestLogStore_GetLogsLimitKeepsChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	ls, _ := newLogStore(t, 10)
	for i := 0; i < 5; i++ {
		require.NoError(t, ls.AddLog(ctx, entry(i)))
	}

	assert.Equal(t, []string{"entry-3", "entry-4"}, messages(ls.GetLogs(ctx, 2)))
	assert.Len(t, ls.GetLogs(ctx, 50), 5)
	assert.Len(t, ls.GetLogs(ctx, 0), 5)
}

func TestLogStore_ClearAndPersistWithBackup(t *testing.T) {
	ctx := context.Background()
	ls, path := newLogStore(t, 10)
	require.NoError(t, ls.AddLog(ctx, entry(1)))
	require.NoError(t, ls.AddLog(ctx, entry(2)))
	require.NoError(t, ls.ClearLogs(ctx))

	assert.Zero(t, ls.Len())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	_, err = os.Stat(filex.BackupPath(path))
	require.NoError(t, err, "log file uses the backup protocol")
}

func TestLogStore_RecoversFromBackup(t *testing.T) {
	ctx := context.Background()
	ls, path := newLogStore(t, 10)
	require.NoError(t, ls.AddLog(ctx, entry(1)))
	require.NoError(t, ls.AddLog(ctx, entry(2)))
	require.NoError(t, os.WriteFile(path, []byte("[{"), 0o600))

	reopened := OpenLogStore(ctx, path, 10, logging.Nop())
	assert.Equal(t, []string{"entry-1"}, messages(reopened.GetLogs(ctx, 0)))
}

func TestLogStore_CapacityAppliesOnLoad(t *testing.T) {
	ctx := context.Background()
	ls, path := newLogStore(t, 10)
	for i := 0; i < 6; i++ {
		require.NoError(t, ls.AddLog(ctx, entry(i)))
	}

	smaller := OpenLogStore(ctx, path, 4, logging.Nop())
	assert.Equal(t, []string{"entry-2", "entry-3", "entry-4", "entry-5"}, messages(smaller.GetLogs(ctx, 0)))
}

func TestLogStore_DeleteLogsForAccount(t *testing.T) {
	ctx := context.Background()
	ls, path := newLogStore(t, 10)
	id := uuid.New()

	n, err := ls.DeleteLogsForAccount(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist, "no write when nothing matched")

	require.NoError(t, ls.AddLog(ctx, entry(0).ForAccount(id, "a@x.io")))
	require.NoError(t, ls.AddLog(ctx, entry(1)))

	n, err = ls.DeleteLogsForAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"entry-1"}, messages(ls.GetLogs(ctx, 0)))
}

func TestLogStore_EntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	ls, _ := newLogStore(t, 10)
	id := uuid.New()
	require.NoError(t, ls.AddLog(ctx, entry(0).ForAccount(id, "a@x.io")))

	got := ls.GetLogs(ctx, 0)
	*got[0].AccountID = uuid.New()

	assert.True(t, ls.GetLogs(ctx, 0)[0].References(id))
}

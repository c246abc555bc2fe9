package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func TestOpen_FreshDirectoryStartsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, s.Dir())
	assert.Empty(t, s.GetAllAccounts(context.Background()))
	assert.Equal(t, models.DefaultSettings(), s.GetSettings(context.Background()))
	assert.Equal(t, 0, s.Logs().Len())
}

func TestOpen_ReloadsPersistedState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, dir)
	require.NoError(t, err)
	a, err := s.AddAccount(ctx, "a@example.com", "pw", "A", "Work")
	require.NoError(t, err)
	require.NoError(t, s.Logs().AddLog(ctx, models.NewOperationLog(models.OpAddAccount, models.LogSuccess, "added")))

	reopened, err := Open(ctx, dir)
	require.NoError(t, err)
	got, err := reopened.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, "pw", got.Password)
	assert.ElementsMatch(t, []string{"Work"}, reopened.GetGroups(ctx))
	assert.Equal(t, 1, reopened.Logs().Len())
}

func TestOpen_RecoversCorruptPrimaryFromBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, dir)
	require.NoError(t, err)
	mustAdd(t, s, "first@example.com")
	mustAdd(t, s, "second@example.com")

	primary := filepath.Join(dir, common.AccountsFileName)
	require.NoError(t, os.WriteFile(primary, []byte("\x00garbage"), 0o600))

	recovered, err := Open(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"first@example.com"}, emails(recovered.GetAllAccounts(ctx)))

	repaired := readConfigFile(t, dir)
	assert.Equal(t, []string{"first@example.com"}, emails(repaired.Accounts))
}

func TestOpen_CorruptWithoutBackupFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.AccountsFileName), []byte("{"), 0o600))

	s, err := Open(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, s.GetAllAccounts(ctx))
}

func TestOpen_MigratesLegacyInlineLogs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	legacy := models.DefaultAppConfig()
	legacy.Accounts = append(legacy.Accounts, models.NewAccount("a@example.com", "pw", "", ""))
	legacy.Logs = []models.OperationLog{
		models.NewOperationLog(models.OpAddAccount, models.LogSuccess, "one"),
		models.NewOperationLog(models.OpEditAccount, models.LogFailed, "two"),
	}
	b, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.AccountsFileName), b, 0o600))

	s, err := Open(ctx, dir)
	require.NoError(t, err)

	logs := s.Logs().GetLogs(ctx, 0)
	require.Len(t, logs, 2)
	assert.Equal(t, "one", logs[0].Message)

	assert.Empty(t, readConfigFile(t, dir).Logs, "accounts.json no longer embeds logs")
	assert.Len(t, readLogsFile(t, dir), 2)
	assert.Len(t, s.GetAllAccounts(ctx), 1)
}

func TestOpen_LegacyLogsMergedAheadOfExistingEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	current := []models.OperationLog{models.NewOperationLog(models.OpBackup, models.LogSuccess, "current")}
	b, err := json.Marshal(current)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.LogsFileName), b, 0o600))

	legacy := models.DefaultAppConfig()
	legacy.Logs = []models.OperationLog{models.NewOperationLog(models.OpAddAccount, models.LogSuccess, "legacy")}
	b, err = json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.AccountsFileName), b, 0o600))

	s, err := Open(ctx, dir)
	require.NoError(t, err)

	logs := s.Logs().GetLogs(ctx, 0)
	require.Len(t, logs, 2)
	assert.Equal(t, "legacy", logs[0].Message)
	assert.Equal(t, "current", logs[1].Message)

	onDisk := readLogsFile(t, dir)
	require.Len(t, onDisk, 2)
	assert.Equal(t, "legacy", onDisk[0].Message)
	assert.Empty(t, readConfigFile(t, dir).Logs)
}

func TestOpen_LegacyLogsMergeRespectsRetention(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	current := []models.OperationLog{
		models.NewOperationLog(models.OpBackup, models.LogSuccess, "c1"),
		models.NewOperationLog(models.OpBackup, models.LogSuccess, "c2"),
	}
	b, err := json.Marshal(current)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.LogsFileName), b, 0o600))

	legacy := models.DefaultAppConfig()
	legacy.Logs = []models.OperationLog{
		models.NewOperationLog(models.OpAddAccount, models.LogSuccess, "l1"),
		models.NewOperationLog(models.OpAddAccount, models.LogSuccess, "l2"),
	}
	b, err = json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.AccountsFileName), b, 0o600))

	s, err := Open(ctx, dir, WithLogRetention(3))
	require.NoError(t, err)

	var got []string
	for _, l := range s.Logs().GetLogs(ctx, 0) {
		got = append(got, l.Message)
	}
	assert.Equal(t, []string{"l2", "c1", "c2"}, got)
}

func TestWriteThrough_EveryMutationReachesDisk(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := mustAdd(t, s, "a@example.com")
	require.NoError(t, s.AddGroup(ctx, "Work"))
	require.NoError(t, s.UpdateAccountPassword(ctx, a.ID, "new"))

	onDisk := readConfigFile(t, s.Dir())
	assert.Contains(t, onDisk.Groups, "Work")
	assert.Equal(t, "new", onDisk.Accounts[0].Password)

	prev, err := os.ReadFile(filex.BackupPath(filepath.Join(s.Dir(), common.AccountsFileName)))
	require.NoError(t, err)
	var backup models.AppConfig
	require.NoError(t, json.Unmarshal(prev, &backup))
	assert.Equal(t, "pw-a@example.com", backup.Accounts[0].Password, "backup holds the previous generation")
}

func TestNoSaveAndFlush(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := mustAdd(t, s, "a@example.com")
	b := mustAdd(t, s, "b@example.com")

	updated := a
	updated.Nickname = "renamed"
	require.NoError(t, s.UpdateAccountNoSave(ctx, updated))

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, s.UpdateAccountTokensNoSave(ctx, a.ID, "tok-a", "ref-a", exp))
	require.NoError(t, s.UpdateAccountTokensNoSave(ctx, b.ID, "tok-b", "ref-b", exp))
	assert.True(t, s.Dirty())

	onDisk := readConfigFile(t, s.Dir())
	assert.Empty(t, onDisk.Accounts[0].Token, "NoSave must not write")

	require.NoError(t, s.Flush(ctx))
	assert.False(t, s.Dirty())

	onDisk = readConfigFile(t, s.Dir())
	assert.Equal(t, "tok-a", onDisk.Accounts[0].Token)
	assert.Equal(t, "tok-b", onDisk.Accounts[1].Token)
	assert.Equal(t, "renamed", onDisk.Accounts[0].Nickname)
	assert.Equal(t, "ref-a", onDisk.Accounts[0].RefreshToken)
}

func TestFlush_NothingPendingIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Flush(context.Background()))

	_, err := os.Stat(filepath.Join(s.Dir(), common.AccountsFileName))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUpdateAccountTokens_NotifiesSubscriber(t *testing.T) {
	ctx := context.Background()
	var got []models.TokenRefreshedEvent
	s := newTestStore(t, WithNotifier(NotifierFunc(func(_ context.Context, ev models.TokenRefreshedEvent) error {
		got = append(got, ev)
		return nil
	})))
	a := mustAdd(t, s, "a@example.com")
	require.NoError(t, s.UpdateAccount(ctx, func() models.Account {
		x := a
		x.Status = models.Errored("expired")
		return x
	}()))

	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.UpdateAccountTokens(ctx, a.ID, "tok", "ref", exp))

	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].AccountID)
	assert.Equal(t, "tok", got[0].Token)
	assert.True(t, exp.Equal(got[0].ExpiresAt))

	stored, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Active(), stored.Status)
	require.NotNil(t, stored.LastLoginAt)
	require.NotNil(t, stored.TokenExpiresAt)
	assert.True(t, exp.Equal(*stored.TokenExpiresAt))
}

func TestUpdateAccountTokens_NotifierErrorIsNotFatal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithNotifier(NotifierFunc(func(context.Context, models.TokenRefreshedEvent) error {
		return errors.New("window closed")
	})))
	a := mustAdd(t, s, "a@example.com")

	require.NoError(t, s.UpdateAccountTokens(ctx, a.ID, "tok", "ref", time.Now()))
	tok, err := s.GetAccountToken(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestUpdateAccountTokens_UnknownAccount(t *testing.T) {
	calls := 0
	s := newTestStore(t, WithNotifier(NotifierFunc(func(context.Context, models.TokenRefreshedEvent) error {
		calls++
		return nil
	})))
	err := s.UpdateAccountTokens(context.Background(), models.NewAccount("x", "", "", "").ID, "t", "r", time.Now())
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Zero(t, calls)
}

func TestPersistFailureSurfacesIOError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustAdd(t, s, "a@example.com")

	// A directory in place of accounts.json makes the commit rename fail.
	primary := filepath.Join(s.Dir(), common.AccountsFileName)
	require.NoError(t, os.Remove(primary))
	require.NoError(t, os.Mkdir(primary, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(primary, "blocker"), []byte("x"), 0o600))

	err := s.AddGroup(ctx, "Work")
	require.ErrorIs(t, err, common.ErrorIO)
	assert.Contains(t, s.GetGroups(ctx), "Work", "in-memory state keeps the mutation")
	assert.True(t, s.Dirty())
}

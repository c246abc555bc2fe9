package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir(), opts...)
	require.NoError(t, err)
	return s
}

func readConfigFile(t *testing.T, dir string) models.AppConfig {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, common.AccountsFileName))
	require.NoError(t, err)
	var c models.AppConfig
	require.NoError(t, json.Unmarshal(b, &c))
	return c
}

func readLogsFile(t *testing.T, dir string) []models.OperationLog {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, common.LogsFileName))
	require.NoError(t, err)
	var l []models.OperationLog
	require.NoError(t, json.Unmarshal(b, &l))
	return l
}

func mustAdd(t *testing.T, s *Store, email string) models.Account {
	t.Helper()
	a, err := s.AddAccount(context.Background(), email, "pw-"+email, "nick", "")
	require.NoError(t, err)
	return a
}

func tagAccount(t *testing.T, s *Store, id uuid.UUID, tags ...string) {
	t.Helper()
	ok, failed, err := s.BatchUpdateAccountTags(context.Background(), []string{id.String()}, tags, nil)
	require.NoError(t, err)
	require.Equal(t, 1, ok)
	require.Equal(t, 0, failed)
}

func emails(accounts []models.Account) []string {
	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.Email
	}
	return out
}

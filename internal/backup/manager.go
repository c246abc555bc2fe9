// Package backup implements point-in-time snapshots, restore and the
// cross-install export/import format on top of store.Store.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/store"
)

const (
	namePrefix   = "accounts_"
	nameSuffix   = ".json"
	stampLayout  = "20060102_150405"
	exportIndent = "  "
)

// Mirror receives a copy of every timestamped snapshot.
type Mirror interface {
	Upload(ctx context.Context, name string, data []byte) error
}

// Manager owns the backups/ directory next to accounts.json.
type Manager struct {
	store  *store.Store
	dir    string
	keep   int
	log    logging.Logger
	mirror Mirror
	now    func() time.Time
}

type Option func(*Manager)

func WithKeep(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.keep = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithMirror uploads each snapshot to mirror as well. Upload failures are
// logged and never fail the backup.
func WithMirror(mirror Mirror) Option {
	return func(m *Manager) { m.mirror = mirror }
}

func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(s *store.Store, opts ...Option) *Manager {
	m := &Manager{
		store: s,
		dir:   filepath.Join(s.Dir(), common.BackupsDirName),
		keep:  common.DefaultBackupKeep,
		log:   logging.Nop(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Dir is the backups directory.
func (m *Manager) Dir() string { return m.dir }

// CreateTimestampedBackup writes the current config to
// backups/accounts_YYYYMMDD_HHMMSS.json (local time) and prunes the directory
// down to the newest keep snapshots.
func (m *Manager) CreateTimestampedBackup(ctx context.Context) (string, error) {
	data, err := json.MarshalIndent(m.store.Snapshot(ctx), "", exportIndent)
	if err != nil {
		return "", common.WrapValidation("encode snapshot", err)
	}

	if _, err := filex.EnsureDir(m.dir); err != nil {
		return "", common.WrapIO("create backups dir", err)
	}

	name := namePrefix + m.now().Local().Format(stampLayout) + nameSuffix
	path := filepath.Join(m.dir, name)
	if err := filex.AtomicWrite(path, data, filex.WriteOptions{}); err != nil {
		return "", err
	}
	m.log.Info(ctx, "backup created", "path", path)

	if err := m.prune(); err != nil {
		m.log.Warn(ctx, "backup pruning failed", "dir", m.dir, "err", err)
	}

	if m.mirror != nil {
		if err := m.mirror.Upload(ctx, name, data); err != nil {
			m.log.Warn(ctx, "backup mirror upload failed", "name", name, "err", err)
		}
	}

	return path, nil
}

// isSnapshotName matches accounts_YYYYMMDD_HHMMSS.json.
func isSnapshotName(name string) bool {
	if !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, nameSuffix) {
		return false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), nameSuffix)
	_, err := time.ParseInLocation(stampLayout, stamp, time.Local)
	return err == nil
}

// ListBackups returns the snapshots newest first by modification time. A
// missing backups directory yields an empty list.
func (m *Manager) ListBackups(_ context.Context) ([]models.BackupInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.BackupInfo{}, nil
	}
	if err != nil {
		return nil, common.WrapIO("list backups", err)
	}

	out := []models.BackupInfo{}
	for _, e := range entries {
		if e.IsDir() || !isSnapshotName(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, models.BackupInfo{
			Name:      e.Name(),
			Path:      filepath.Join(m.dir, e.Name()),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}

	slices.SortStableFunc(out, func(a, b models.BackupInfo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
	return out, nil
}

func (m *Manager) prune() error {
	list, err := m.ListBackups(context.Background())
	if err != nil {
		return err
	}
	var errs []error
	for _, b := range list[min(m.keep, len(list)):] {
		if err := os.Remove(b.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ExportData writes the interchange envelope to path.
func (m *Manager) ExportData(ctx context.Context, path string) error {
	snap := m.store.Snapshot(ctx)
	env := models.ExportEnvelope{
		Version:    models.ExportVersion,
		ExportedAt: m.now().Local().Format(time.RFC3339),
		Accounts:   snap.Accounts,
		Groups:     snap.Groups,
		Settings:   &snap.Settings,
	}

	data, err := json.MarshalIndent(env, "", exportIndent)
	if err != nil {
		return common.WrapValidation("encode export", err)
	}
	if err := filex.AtomicWrite(path, data, filex.WriteOptions{}); err != nil {
		return err
	}
	m.log.Info(ctx, "data exported", "path", path, "accounts", len(env.Accounts))
	return nil
}

// ImportData reads an envelope from path and merges or replaces the account
// list with it. The file is decoded and validated before anything changes;
// then a safety snapshot of the current state is taken.
func (m *Manager) ImportData(ctx context.Context, path string, merge bool) (models.ImportResult, error) {
	var env models.ExportEnvelope
	if err := readJSON(path, &env); err != nil {
		return models.ImportResult{}, err
	}
	if err := env.Validate(); err != nil {
		return models.ImportResult{}, common.WrapValidation("import "+path, err)
	}

	if _, err := m.CreateTimestampedBackup(ctx); err != nil {
		return models.ImportResult{}, fmt.Errorf("safety backup before import: %w", err)
	}

	res, err := m.store.ImportAccounts(ctx, env.Accounts, env.Groups, merge)
	if err != nil {
		return models.ImportResult{}, err
	}
	m.log.Info(ctx, "data imported", "path", path, "merge", merge,
		"added", res.AccountsAdded, "skipped", res.AccountsSkipped, "groups_added", res.GroupsAdded)
	return res, nil
}

// RestoreFromBackup replaces the current config with the one in path. A
// file that does not decode to a valid config fails before any change.
func (m *Manager) RestoreFromBackup(ctx context.Context, path string) error {
	var cfg models.AppConfig
	if err := readJSON(path, &cfg); err != nil {
		return err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return common.WrapValidation("restore "+path, err)
	}

	if _, err := m.CreateTimestampedBackup(ctx); err != nil {
		return fmt.Errorf("safety backup before restore: %w", err)
	}

	if err := m.store.ReplaceConfig(ctx, cfg); err != nil {
		return err
	}
	m.log.Info(ctx, "config restored", "path", path, "accounts", len(cfg.Accounts))
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.WrapIO("read "+path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return common.WrapValidation("decode "+path, err)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// Store owns the AppConfig aggregate.
type Store struct {
	dir          string
	accountsPath string

	log      logging.Logger
	notifier Notifier
	logs     *LogStore

	mu  sync.RWMutex
	cfg models.AppConfig

	// version counts in-memory mutations; persisted is the version of the
	// newest snapshot on disk.
	version   atomic.Uint64
	persisted atomic.Uint64

	persistMu sync.Mutex
	flushes   singleflight.Group

	logRetention int
}

// Option configures Open.
type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithNotifier sets the subscriber of token refresh events.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLogRetention caps the operation log. Values below 1 are ignored.
func WithLogRetention(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.logRetention = n
		}
	}
}

// Open loads dir/accounts.json and dir/logs.json, creating dir if needed.
//
// Unreadable files are recovered from their .backup copy or replaced by
// defaults; Open only fails when the directory itself cannot be created.
// Operation logs still embedded in a legacy accounts.json are moved into
// logs.json once, ahead of any entries that file already holds.
func Open(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	s := &Store{
		log:          logging.Nop(),
		notifier:     nopNotifier{},
		logRetention: common.MaxLogEntries,
	}
	for _, o := range opts {
		o(s)
	}

	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, common.WrapIO("open data dir", err)
	}
	s.dir = abs
	s.accountsPath = filepath.Join(abs, common.AccountsFileName)

	cfg, rep := filex.LoadJSON(s.accountsPath, models.DefaultAppConfig)
	logLoad(ctx, s.log, s.accountsPath, rep)
	cfg.Normalize()
	s.cfg = cfg

	s.logs = OpenLogStore(ctx, filepath.Join(abs, common.LogsFileName), s.logRetention, s.log)

	if err := s.migrateLegacyLogs(ctx); err != nil {
		s.log.Warn(ctx, "legacy log migration failed", "err", err)
	}

	return s, nil
}

func (s *Store) migrateLegacyLogs(ctx context.Context) error {
	s.mu.Lock()
	legacy := s.cfg.Logs
	s.cfg.Logs = nil
	s.mu.Unlock()

	if len(legacy) == 0 {
		return nil
	}
	s.version.Add(1)

	// Inline entries predate the log file, so they go in front of whatever it
	// already holds. The retention cap evicts from the legacy end first.
	current := s.logs.GetLogs(ctx, 0)
	merged := append(append([]models.OperationLog{}, legacy...), current...)
	if err := s.logs.replace(ctx, merged); err != nil {
		// Keep both sides as they were on disk so the next Open retries.
		s.logs.reset(current)
		s.mu.Lock()
		s.cfg.Logs = legacy
		s.mu.Unlock()
		return err
	}
	s.log.Info(ctx, "migrated legacy inline logs", "count", len(legacy), "total", s.logs.Len())
	return s.persist(ctx)
}

func logLoad(ctx context.Context, l logging.Logger, path string, rep filex.LoadReport) {
	if !rep.Recovered() {
		l.Debug(ctx, "loaded", "path", path, "source", rep.Source.String())
		return
	}
	l.Warn(ctx, "primary file unusable", "path", path, "err", rep.PrimaryErr)
	switch rep.Source {
	case filex.SourceBackup:
		l.Warn(ctx, "recovered from backup", "path", path, "repair_err", rep.RepairErr)
	default:
		l.Warn(ctx, "no usable backup, starting from defaults", "path", path, "backup_err", rep.BackupErr)
	}
}

// Dir is the absolute data directory.
func (s *Store) Dir() string { return s.dir }

// Logs is the operation log that shares this store's data directory.
func (s *Store) Logs() *LogStore { return s.logs }

// mutate runs fn under the write lock. fn must leave the aggregate
// untouched when it returns an error.
func (s *Store) mutate(fn func(c *models.AppConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.cfg); err != nil {
		return err
	}
	s.version.Add(1)
	return nil
}

// view runs fn under the read lock.
func (s *Store) view(fn func(c *models.AppConfig)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.cfg)
}

// persist writes the current aggregate. Persists are serialized and each
// takes its snapshot after the previous one finished, so the file always
// ends up holding the newest state of the last completed call.
func (s *Store) persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	v := s.version.Load()
	data, err := json.MarshalIndent(s.cfg, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return common.WrapValidation("encode config", err)
	}

	if err := filex.AtomicWrite(s.accountsPath, data, filex.WriteOptions{Backup: true}); err != nil {
		s.log.Error(ctx, "persist failed", "path", s.accountsPath, "err", err)
		return err
	}
	s.persisted.Store(v)
	return nil
}

// mutateAndPersist is the write-through path of every saving operation.
func (s *Store) mutateAndPersist(ctx context.Context, fn func(c *models.AppConfig) error) error {
	if err := s.mutate(fn); err != nil {
		return err
	}
	return s.persist(ctx)
}

// Flush commits every mutation made so far, including those of NoSave
// calls. Concurrent flushes share in-flight writes.
func (s *Store) Flush(ctx context.Context) error {
	target := s.version.Load()
	for s.persisted.Load() < target {
		_, err, _ := s.flushes.Do("flush", func() (any, error) {
			return nil, s.persist(ctx)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Dirty reports whether there are mutations not yet on disk.
func (s *Store) Dirty() bool {
	return s.persisted.Load() < s.version.Load()
}

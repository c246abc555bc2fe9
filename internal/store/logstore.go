package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// LogStore is a bounded, append-only list of OperationLog entries kept in
// its own file. When an append pushes it past capacity the oldest entries
// are evicted.
type LogStore struct {
	path string
	max  int
	log  logging.Logger

	mu      sync.RWMutex
	entries []models.OperationLog

	persistMu sync.Mutex
}

// OpenLogStore loads path with the usual backup recovery. capacity below 1
// falls back to common.MaxLogEntries.
func OpenLogStore(ctx context.Context, path string, capacity int, l logging.Logger) *LogStore {
	if capacity < 1 {
		capacity = common.MaxLogEntries
	}
	if l == nil {
		l = logging.Nop()
	}

	entries, rep := filex.LoadJSON(path, func() []models.OperationLog { return []models.OperationLog{} })
	logLoad(ctx, l, path, rep)
	if entries == nil {
		entries = []models.OperationLog{}
	}

	ls := &LogStore{path: path, max: capacity, log: l, entries: entries}
	ls.trim()
	return ls
}

// trim evicts from the front until the cap holds. Caller holds mu.
func (ls *LogStore) trim() {
	if over := len(ls.entries) - ls.max; over > 0 {
		ls.entries = append([]models.OperationLog{}, ls.entries[over:]...)
	}
}

// AddLog appends entry and persists the collection.
func (ls *LogStore) AddLog(ctx context.Context, entry models.OperationLog) error {
	ls.mu.Lock()
	ls.entries = append(ls.entries, entry.Clone())
	ls.trim()
	ls.mu.Unlock()

	return ls.persist(ctx)
}

// GetLogs returns the newest limit entries in chronological order, or all of
// them when limit < 1.
func (ls *LogStore) GetLogs(_ context.Context, limit int) []models.OperationLog {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(ls.entries) {
		start = len(ls.entries) - limit
	}
	out := make([]models.OperationLog, 0, len(ls.entries)-start)
	for _, e := range ls.entries[start:] {
		out = append(out, e.Clone())
	}
	return out
}

func (ls *LogStore) ClearLogs(ctx context.Context) error {
	ls.mu.Lock()
	ls.entries = []models.OperationLog{}
	ls.mu.Unlock()

	return ls.persist(ctx)
}

// DeleteLogsForAccount drops every entry that references id and reports how
// many were removed. Nothing is written when no entry matched.
func (ls *LogStore) DeleteLogsForAccount(ctx context.Context, id uuid.UUID) (int, error) {
	ls.mu.Lock()
	kept := make([]models.OperationLog, 0, len(ls.entries))
	for _, e := range ls.entries {
		if !e.References(id) {
			kept = append(kept, e)
		}
	}
	removed := len(ls.entries) - len(kept)
	ls.entries = kept
	ls.mu.Unlock()

	if removed == 0 {
		return 0, nil
	}
	return removed, ls.persist(ctx)
}

// Len is the number of stored entries.
func (ls *LogStore) Len() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return len(ls.entries)
}

func (ls *LogStore) replace(ctx context.Context, entries []models.OperationLog) error {
	ls.mu.Lock()
	ls.entries = make([]models.OperationLog, len(entries))
	for i, e := range entries {
		ls.entries[i] = e.Clone()
	}
	ls.trim()
	ls.mu.Unlock()

	return ls.persist(ctx)
}

// reset swaps the in-memory entries without writing.
func (ls *LogStore) reset(entries []models.OperationLog) {
	ls.mu.Lock()
	ls.entries = entries
	ls.trim()
	ls.mu.Unlock()
}

func (ls *LogStore) persist(ctx context.Context) error {
	ls.persistMu.Lock()
	defer ls.persistMu.Unlock()

	ls.mu.RLock()
	data, err := json.MarshalIndent(ls.entries, "", "  ")
	ls.mu.RUnlock()
	if err != nil {
		return common.WrapValidation("encode logs", err)
	}

	if err := filex.AtomicWrite(ls.path, data, filex.WriteOptions{Backup: true}); err != nil {
		ls.log.Error(ctx, "persist logs failed", "path", ls.path, "err", err)
		return err
	}
	return nil
}

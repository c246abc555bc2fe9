package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/backup"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/store"
)

// DataService records backup, import and restore operations in the
// operation log.
type DataService struct {
	store   *store.Store
	backups *backup.Manager
	log     logging.Logger
}

func NewDataService(s *store.Store, m *backup.Manager, l logging.Logger) *DataService {
	if l == nil {
		l = logging.Nop()
	}
	return &DataService{store: s, backups: m, log: l}
}

func (s *DataService) record(ctx context.Context, typ models.OperationType, err error, okMsg string) {
	entry := models.NewOperationLog(typ, models.LogSuccess, okMsg)
	if err != nil {
		entry = models.NewOperationLog(typ, models.LogFailed, err.Error())
	}
	if lerr := s.store.Logs().AddLog(ctx, entry); lerr != nil {
		s.log.Warn(ctx, "operation log not written", "type", typ, "err", lerr)
	}
}

func (s *DataService) Backup(ctx context.Context) (string, error) {
	path, err := s.backups.CreateTimestampedBackup(ctx)
	s.record(ctx, models.OpBackup, err, "backup created: "+path)
	return path, err
}

func (s *DataService) ListBackups(ctx context.Context) ([]models.BackupInfo, error) {
	return s.backups.ListBackups(ctx)
}

// Export writes the envelope to path. Exports are not logged.
func (s *DataService) Export(ctx context.Context, path string) error {
	return s.backups.ExportData(ctx, path)
}

func (s *DataService) Import(ctx context.Context, path string, merge bool) (models.ImportResult, error) {
	res, err := s.backups.ImportData(ctx, path, merge)
	s.record(ctx, models.OpImport, err, fmt.Sprintf("imported %s: %d added, %d skipped, %d groups added",
		path, res.AccountsAdded, res.AccountsSkipped, res.GroupsAdded))
	return res, err
}

func (s *DataService) Restore(ctx context.Context, path string) error {
	err := s.backups.RestoreFromBackup(ctx, path)
	s.record(ctx, models.OpRestore, err, "restored from "+path)
	return err
}

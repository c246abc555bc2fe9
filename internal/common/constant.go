package common

// File and directory names inside the data directory.
const (
	AccountsFileName = "accounts.json"
	LogsFileName     = "logs.json"
	BackupsDirName   = "backups"
)

// DefaultGroupName is assigned to accounts added without an explicit group.
const DefaultGroupName = "Default"

// MaxLogEntries is the default retention cap of the operation log.
const MaxLogEntries = 1000

// DefaultBackupKeep is how many timestamped snapshots survive pruning.
const DefaultBackupKeep = 10

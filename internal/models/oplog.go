package models

import (
	"time"

	"github.com/google/uuid"
)

// OperationType names the action an OperationLog records.
type OperationType string

const (
	OpAddAccount     OperationType = "add_account"
	OpEditAccount    OperationType = "edit_account"
	OpDeleteAccount  OperationType = "delete_account"
	OpBatchOperation OperationType = "batch_operation"
	OpRefreshToken   OperationType = "refresh_token"
	OpImport         OperationType = "import"
	OpRestore        OperationType = "restore"
	OpBackup         OperationType = "backup"
)

// LogStatus is the outcome of a logged operation.
type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogFailed  LogStatus = "failed"
)

// OperationLog is an immutable audit record.
type OperationLog struct {
	ID           uuid.UUID     `json:"id"`
	Type         OperationType `json:"operation_type"`
	Status       LogStatus     `json:"status"`
	Message      string        `json:"message"`
	AccountID    *uuid.UUID    `json:"account_id,omitempty"`
	AccountEmail string        `json:"account_email,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewOperationLog stamps a new entry with an id and the current time.
func NewOperationLog(typ OperationType, status LogStatus, message string) OperationLog {
	return OperationLog{
		ID:        uuid.New(),
		Type:      typ,
		Status:    status,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

// ForAccount returns a copy of l that references the given account.
func (l OperationLog) ForAccount(id uuid.UUID, email string) OperationLog {
	l.AccountID = &id
	l.AccountEmail = email
	return l
}

// References reports whether l points at account id.
func (l OperationLog) References(id uuid.UUID) bool {
	return l.AccountID != nil && *l.AccountID == id
}

// Clone returns a copy that shares no pointers with l.
func (l OperationLog) Clone() OperationLog {
	if l.AccountID != nil {
		id := *l.AccountID
		l.AccountID = &id
	}
	return l
}

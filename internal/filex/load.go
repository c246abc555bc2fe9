package filex

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// Source tells which file satisfied LoadJSON.
type Source int

const (
	SourceDefault Source = iota
	SourcePrimary
	SourceBackup
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceBackup:
		return "backup"
	default:
		return "default"
	}
}

// LoadReport describes how LoadJSON arrived at its value. The errors are
// informational; LoadJSON itself never fails.
type LoadReport struct {
	Source     Source
	PrimaryErr error
	BackupErr  error
	RepairErr  error
}

// Recovered reports whether the primary file was unusable.
func (r LoadReport) Recovered() bool {
	return r.PrimaryErr != nil
}

// LoadJSON decodes path into a fresh value from newDefault.
//
// A missing primary yields the default. An unreadable or undecodable primary
// falls back to BackupPath(path); when the backup decodes, it is copied over
// the primary to repair it. With no usable backup the default is returned.
func LoadJSON[T any](path string, newDefault func() T) (T, LoadReport) {
	var rep LoadReport

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return newDefault(), rep
	}

	if err == nil {
		v := newDefault()
		if err = json.Unmarshal(data, &v); err == nil {
			rep.Source = SourcePrimary
			return v, rep
		}
		rep.PrimaryErr = common.WrapValidation("decode "+path, err)
	} else {
		rep.PrimaryErr = common.WrapIO("read "+path, err)
	}

	backup := BackupPath(path)
	bdata, err := os.ReadFile(backup)
	if err != nil {
		rep.BackupErr = common.WrapIO("read "+backup, err)
		return newDefault(), rep
	}

	v := newDefault()
	if err := json.Unmarshal(bdata, &v); err != nil {
		rep.BackupErr = common.WrapValidation("decode "+backup, err)
		return newDefault(), rep
	}

	if err := CopyFile(backup, path); err != nil {
		rep.RepairErr = common.WrapIO("repair "+path, err)
	}
	rep.Source = SourceBackup
	return v, rep
}

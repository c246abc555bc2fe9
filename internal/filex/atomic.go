package filex

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// renameFile is a test seam for os.Rename, the commit point of AtomicWrite.
var renameFile = os.Rename

var tempSeq atomic.Uint64

// WriteOptions tunes AtomicWrite.
type WriteOptions struct {
	// Backup copies the current target to BackupPath(target) before the
	// new content is committed.
	Backup bool

	// Validate checks the bytes re-read from the temporary file. When nil
	// the content must be valid JSON.
	Validate func([]byte) error

	// Perm is the mode of the new file. Zero means 0o600.
	Perm os.FileMode
}

// BackupPath returns the fixed one-generation backup location for path.
func BackupPath(path string) string {
	return path + ".backup"
}

// ValidJSON is the default AtomicWrite validator.
func ValidJSON(b []byte) error {
	if !json.Valid(b) {
		return errors.New("written data failed JSON validation")
	}
	return nil
}

// AtomicWrite replaces path with data so that readers observe either the
// old content or the new content, never a mix.
//
// The data goes to a uniquely named temporary file in the same directory,
// is read back and validated, the current target is optionally copied to
// its backup path, and finally the temporary file is renamed over the
// target. Any failure before the rename deletes the temporary file and
// leaves the target untouched.
func AtomicWrite(path string, data []byte, opts WriteOptions) (err error) {
	validate := opts.Validate
	if validate == nil {
		validate = ValidJSON
	}
	perm := opts.Perm
	if perm == 0 {
		perm = 0o600
	}

	dir := filepath.Dir(path)
	tmp := tempName(path)

	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = writeSynced(tmp, data, perm); err != nil {
		return common.WrapIO("write temp file", err)
	}

	written, err := os.ReadFile(tmp)
	if err != nil {
		return common.WrapIO("read back temp file", err)
	}
	if err = validate(written); err != nil {
		return common.WrapValidation("validate temp file", err)
	}

	if opts.Backup {
		if _, statErr := os.Stat(path); statErr == nil {
			if err = CopyFile(path, BackupPath(path)); err != nil {
				return common.WrapIO("copy backup", err)
			}
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			err = statErr
			return common.WrapIO("stat target", err)
		}
	}

	if err = renameFile(tmp, path); err != nil {
		return common.WrapIO("commit rename", err)
	}

	syncDir(dir)
	return nil
}

// tempName salts the temp file with pid, wall-clock nanoseconds and a
// process-wide sequence so concurrent writers never collide.
func tempName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "data"
	}
	name := fmt.Sprintf("%s.tmp.%d.%d.%d", stem, os.Getpid(), time.Now().UnixNano(), tempSeq.Add(1))
	return filepath.Join(filepath.Dir(path), name)
}

func writeSynced(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// syncDir flushes the directory entry after a rename. Not every platform
// supports fsync on directories, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

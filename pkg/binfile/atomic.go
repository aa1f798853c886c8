//go:build !windows

package binfile

import (
	"io/fs"

	"github.com/google/renameio/v2"
)

// AtomicSupported reports whether WithAtomic replaces files atomically.
const AtomicSupported = true

type atomicTarget struct {
	*renameio.PendingFile
}

func openAtomic(path string, perm fs.FileMode) (target, error) {
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return nil, err
	}
	return atomicTarget{PendingFile: f}, nil
}

func (t atomicTarget) Commit() error {
	return t.CloseAtomicallyReplace()
}

// Close discards the temporary file. It is a no-op after Commit.
func (t atomicTarget) Close() error {
	return t.Cleanup()
}

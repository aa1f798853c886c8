//go:build windows

package binfile

import "io/fs"

// AtomicSupported reports whether WithAtomic replaces files atomically.
// renameio has no Windows support, so atomic writes fall back to plain ones.
const AtomicSupported = false

func openAtomic(path string, perm fs.FileMode) (target, error) {
	return openPlain(path, perm)
}

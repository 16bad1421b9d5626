package storage

import (
	"os"

	atomicfile "github.com/natefinch/atomic"
)

// replaceAtomic swaps tempPath into place at dst using an atomic rename where
// the platform supports one. Some filesystems refuse to rename over an
// existing file atomically (older network filesystems, certain Windows
// configurations); on the first failure we remove dst and retry once rather
// than leaving the store wedged mid-compaction (spec §4.6 step 6).
func replaceAtomic(tempPath, dst string) error {
	if err := atomicfile.ReplaceFile(tempPath, dst); err != nil {
		if removeErr := os.Remove(dst); removeErr != nil && !os.IsNotExist(removeErr) {
			return err
		}
		return atomicfile.ReplaceFile(tempPath, dst)
	}
	return nil
}

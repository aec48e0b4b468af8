package segment

import (
	"fmt"
	"os"
)

// FileWriter persists bytes at arbitrary offsets in a single destination
// file. Every call opens the file (creating it if absent), writes, and
// closes the handle again. The file is never truncated or preallocated, so
// concurrent writers targeting disjoint ranges are safe.
type FileWriter struct {
	Path string
}

func (w *FileWriter) WriteAt(p []byte, off int64) (int, error) {
	file, err := os.OpenFile(w.Path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("error opening output file: %v", err)
	}
	defer file.Close()
	return file.WriteAt(p, off)
}

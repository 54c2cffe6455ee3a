package workload

import (
	"os"
	"path/filepath"
	"sync"
)

// Journal is a line-oriented file sink for rendered bar lines. Every Write
// becomes one line. It is safe for concurrent writers.
type Journal struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenJournal creates (or truncates) the journal at path. Parent
// directories are created as needed.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // G304: path comes from the -journal flag
	if err != nil {
		return nil, err
	}
	return &Journal{path: path, f: f}, nil
}

// Path returns the journal location.
func (j *Journal) Path() string {
	return j.path
}

// Write appends p followed by a newline.
func (j *Journal) Write(p []byte) (int, error) {
	line := make([]byte, 0, len(p)+1)
	line = append(append(line, p...), '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.f.Write(line); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close flushes and closes the file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.f.Sync(); err != nil {
		_ = j.f.Close()
		return err
	}
	return j.f.Close()
}

package git

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	billy "github.com/go-git/go-billy/v5"
)

// LimitedFs wraps a billy.Filesystem and enforces caps on the number of
// files created and on the total bytes written through it. Cloning an
// attacker-controlled repository into memory needs both bounds.
type LimitedFs struct {
	billy.Filesystem

	// MaxFiles caps the number of files created through this filesystem
	MaxFiles int64

	// TotalFileSize caps the total bytes written through this filesystem
	TotalFileSize int64

	once         sync.Once
	fileCount    *atomic.Int64
	bytesWritten *atomic.Int64
}

var _ billy.Filesystem = (*LimitedFs)(nil)

// ErrLimitExceeded is returned when a filesystem cap is hit
var ErrLimitExceeded = fmt.Errorf("filesystem limit exceeded")

// counters lazily allocates the shared counters so a zero-value LimitedFs
// works and chrooted views can reuse the parent's state
func (l *LimitedFs) counters() (files, bytes *atomic.Int64) {
	l.once.Do(func() {
		if l.fileCount == nil {
			l.fileCount = new(atomic.Int64)
		}
		if l.bytesWritten == nil {
			l.bytesWritten = new(atomic.Int64)
		}
	})
	return l.fileCount, l.bytesWritten
}

func (l *LimitedFs) countFile() error {
	files, _ := l.counters()
	if files.Add(1) > l.MaxFiles {
		return fmt.Errorf("%w: more than %d files", ErrLimitExceeded, l.MaxFiles)
	}
	return nil
}

// Create creates a new file, counting it against MaxFiles
func (l *LimitedFs) Create(filename string) (billy.File, error) {
	if err := l.countFile(); err != nil {
		return nil, err
	}
	f, err := l.Filesystem.Create(filename)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: l}, nil
}

// OpenFile opens a file, counting creations against MaxFiles
func (l *LimitedFs) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&os.O_CREATE != 0 {
		if err := l.countFile(); err != nil {
			return nil, err
		}
	}
	f, err := l.Filesystem.OpenFile(filename, flag, perm)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: l}, nil
}

// TempFile creates a temporary file, counting it against MaxFiles
func (l *LimitedFs) TempFile(dir, prefix string) (billy.File, error) {
	if err := l.countFile(); err != nil {
		return nil, err
	}
	f, err := l.Filesystem.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: l}, nil
}

// Chroot returns a chrooted view sharing this filesystem's caps and counters
func (l *LimitedFs) Chroot(path string) (billy.Filesystem, error) {
	fs, err := l.Filesystem.Chroot(path)
	if err != nil {
		return nil, err
	}
	files, bytes := l.counters()
	return &LimitedFs{
		Filesystem:    fs,
		MaxFiles:      l.MaxFiles,
		TotalFileSize: l.TotalFileSize,
		fileCount:     files,
		bytesWritten:  bytes,
	}, nil
}

// limitedFile counts bytes written against the parent filesystem's cap
type limitedFile struct {
	billy.File
	fs *LimitedFs
}

func (f *limitedFile) Write(p []byte) (int, error) {
	_, bytes := f.fs.counters()
	if bytes.Add(int64(len(p))) > f.fs.TotalFileSize {
		return 0, fmt.Errorf("%w: more than %d bytes", ErrLimitExceeded, f.fs.TotalFileSize)
	}
	return f.File.Write(p)
}

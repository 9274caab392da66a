package logcleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"coin_backend/internal/platform/lock"
)

// LockName is the distributed lock taken for the duration of a run.
const LockName = "logcleanup"

// lockTTL bounds how long a crashed run can block the next one.
const lockTTL = 10 * time.Minute

// DistLocker takes a lock shared with other processes.
type DistLocker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error)
}

// Archiver stores the dropped lines before they are removed.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte) error
}

// Summary describes one run.
type Summary struct {
	Found     bool
	Skipped   bool
	Window    time.Duration
	Removed   int
	Remaining int
	Archived  string
}

// String returns the message reported by the cleanup task.
func (s Summary) String() string {
	switch {
	case s.Skipped:
		return "Log cleanup skipped: another run holds the lock."
	case !s.Found:
		return "No log file found."
	default:
		return fmt.Sprintf("Logs older than %s deleted. Remaining entries: %d", formatWindow(s.Window), s.Remaining)
	}
}

func formatWindow(d time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case d == day:
		return "1 day"
	case d%day == 0:
		return fmt.Sprintf("%d days", int(d/day))
	default:
		return d.String()
	}
}

// CleanerDeps holds the Cleaner's collaborators. Only Path is required.
type CleanerDeps struct {
	Path     string
	Window   time.Duration
	FileLock sync.Locker // logger.FileSink of this process, if any
	DistLock DistLocker  // nil without Redis
	Archive  Archiver    // nil disables archiving
	Logger   *zap.Logger
	Now      func() time.Time
}

// Cleaner rewrites the system log file in place without its stale lines.
type Cleaner struct {
	path     string
	window   time.Duration
	fileLock sync.Locker
	dist     DistLocker
	archive  Archiver
	logger   *zap.Logger
	now      func() time.Time
}

// NewCleaner はCleanerの新しいインスタンスを生成します。
func NewCleaner(d CleanerDeps) *Cleaner {
	if d.Window <= 0 {
		d.Window = DefaultWindow
	}
	if d.FileLock == nil {
		d.FileLock = &sync.Mutex{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Cleaner{
		path:     d.Path,
		window:   d.Window,
		fileLock: d.FileLock,
		dist:     d.DistLock,
		archive:  d.Archive,
		logger:   d.Logger,
		now:      d.Now,
	}
}

// Run sweeps the log file once. A missing file is not an error.
func (c *Cleaner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{Window: c.window}

	if c.dist != nil {
		release, err := c.dist.Acquire(ctx, LockName, lockTTL)
		if errors.Is(err, lock.ErrNotAcquired) {
			sum.Skipped = true
			return sum, nil
		}
		if err != nil {
			return sum, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				c.logger.Warn("failed to release log cleanup lock", zap.Error(err))
			}
		}()
	}

	// ロック中は同一プロセスのログ書き込みが止まるため、ここではロガーを使わない
	c.fileLock.Lock()
	sum, err := c.sweepFile(ctx, sum)
	c.fileLock.Unlock()
	if err != nil {
		return sum, err
	}

	if sum.Found {
		c.logger.Info("log cleanup finished",
			zap.String("path", c.path),
			zap.Int("removed", sum.Removed),
			zap.Int("remaining", sum.Remaining),
			zap.String("archive", sum.Archived))
	}
	return sum, nil
}

// sweepFile must be called with fileLock held. Archive failures leave the
// file untouched.
func (c *Cleaner) sweepFile(ctx context.Context, sum Summary) (Summary, error) {
	f, err := os.OpenFile(c.path, os.O_RDWR, 0)
	if errors.Is(err, os.ErrNotExist) {
		return sum, nil
	}
	if err != nil {
		return sum, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	sum.Found = true

	data, err := io.ReadAll(f)
	if err != nil {
		return sum, fmt.Errorf("read log file: %w", err)
	}

	now := c.now()
	res := Sweep(splitLines(string(data)), now, c.window)
	sum.Removed = len(res.Dropped)
	sum.Remaining = res.Remaining()
	if sum.Removed == 0 {
		return sum, nil
	}

	if c.archive != nil {
		key := fmt.Sprintf("coinlytics_system-%s.log", now.Format("20060102T150405Z"))
		if err := c.archive.Put(ctx, key, []byte(strings.Join(res.Dropped, ""))); err != nil {
			return sum, fmt.Errorf("archive dropped lines: %w", err)
		}
		sum.Archived = key
	}

	// 読み込み後に他プロセスが追記した分は、そのまま末尾に残す
	tail, err := readFrom(f, int64(len(data)))
	if err != nil {
		return sum, err
	}
	kept := strings.Join(res.Kept, "") + tail
	sum.Remaining += len(splitLines(tail))

	if err := f.Truncate(0); err != nil {
		return sum, fmt.Errorf("truncate log file: %w", err)
	}
	if _, err := f.WriteAt([]byte(kept), 0); err != nil {
		return sum, fmt.Errorf("rewrite log file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return sum, fmt.Errorf("sync log file: %w", err)
	}
	return sum, nil
}

func readFrom(f *os.File, offset int64) (string, error) {
	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat log file: %w", err)
	}
	if fi.Size() <= offset {
		return "", nil
	}
	buf := make([]byte, fi.Size()-offset)
	n, err := f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read log file tail: %w", err)
	}
	return string(buf[:n]), nil
}

// splitLines splits s after each newline; a final unterminated line is kept.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

package counter

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/matzehuels/sysresolve/pkg/errors"
)

// maxFileSize bounds the counter file. Anything larger is not a counter.
const maxFileSize = 64

// FileCounter stores the value as ASCII text in a file and serializes
// access with flock(2).
type FileCounter struct {
	path string
}

var _ Counter = (*FileCounter)(nil)

// NewFileCounter returns a counter backed by path. The file is created
// empty if it does not exist; reading an empty file is an error until
// [FileCounter.Set] is called.
func NewFileCounter(path string) (*FileCounter, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCounterIO, err, "open counter %s", path)
	}
	f.Close()
	return &FileCounter{path: path}, nil
}

// Path returns the backing file.
func (c *FileCounter) Path() string { return c.path }

func (c *FileCounter) TryDecrement(ctx context.Context) (int, error) {
	var value int
	err := c.locked(func(f *os.File) error {
		v, err := readValue(f)
		if err != nil {
			return err
		}
		value = v
		if v > 0 {
			return writeValue(f, v-1)
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCounterIO, err, "decrement counter %s", c.path)
	}
	return value, nil
}

func (c *FileCounter) Value(ctx context.Context) (int, error) {
	var value int
	err := c.locked(func(f *os.File) error {
		v, err := readValue(f)
		value = v
		return err
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCounterIO, err, "read counter %s", c.path)
	}
	return value, nil
}

func (c *FileCounter) Set(ctx context.Context, v int) error {
	if v < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "counter value must not be negative, got %d", v)
	}
	err := c.locked(func(f *os.File) error { return writeValue(f, v) })
	if err != nil {
		return errors.Wrap(errors.ErrCodeCounterIO, err, "write counter %s", c.path)
	}
	return nil
}

func (c *FileCounter) locked(fn func(*os.File) error) error {
	f, err := os.OpenFile(c.path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	defer unix.Flock(fd, unix.LOCK_UN)

	return fn(f)
}

func readValue(f *os.File) (int, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Size() > maxFileSize {
		return 0, fmt.Errorf("counter file is too large (%d bytes)", info.Size())
	}

	buf := make([]byte, info.Size())
	if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(buf)))
	if err != nil {
		return 0, fmt.Errorf("malformed counter value %q", buf)
	}
	return v, nil
}

func writeValue(f *os.File, v int) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err := f.WriteAt([]byte(strconv.Itoa(v)+"\n"), 0)
	return err
}

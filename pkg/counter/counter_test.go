package counter

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/matzehuels/sysresolve/pkg/errors"
)

func newFileCounter(t *testing.T, value int) *FileCounter {
	t.Helper()
	c, err := NewFileCounter(filepath.Join(t.TempDir(), "counter"))
	if err != nil {
		t.Fatalf("NewFileCounter() error: %v", err)
	}
	if err := c.Set(context.Background(), value); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	return c
}

func TestFileCounterTryDecrement(t *testing.T) {
	ctx := context.Background()
	c := newFileCounter(t, 2)

	for _, want := range []int{2, 1, 0, 0} {
		got, err := c.TryDecrement(ctx)
		if err != nil {
			t.Fatalf("TryDecrement() error: %v", err)
		}
		if got != want {
			t.Errorf("TryDecrement() = %d, want %d", got, want)
		}
	}

	v, err := c.Value(ctx)
	if err != nil || v != 0 {
		t.Errorf("Value() = %d, %v, want 0", v, err)
	}
}

func TestFileCounterFormat(t *testing.T) {
	c := newFileCounter(t, 1000)
	if _, err := c.TryDecrement(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(c.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "999\n" {
		t.Errorf("file content = %q, want %q", data, "999\n")
	}
}

func TestFileCounterConcurrent(t *testing.T) {
	ctx := context.Background()
	c := newFileCounter(t, 50)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		positive int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A separate instance per goroutine mimics separate processes.
			other, err := NewFileCounter(c.Path())
			if err != nil {
				t.Error(err)
				return
			}
			for range 10 {
				v, err := other.TryDecrement(ctx)
				if err != nil {
					t.Error(err)
					return
				}
				if v > 0 {
					mu.Lock()
					positive++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if positive != 50 {
		t.Errorf("%d decrements saw a positive value, want exactly 50", positive)
	}
}

func TestFileCounterErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"garbage", "lots"},
		{"too large", string(make([]byte, 65))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "counter")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := NewFileCounter(path)
			if err != nil {
				t.Fatal(err)
			}
			_, err = c.TryDecrement(ctx)
			if !errors.Is(err, errors.ErrCodeCounterIO) {
				t.Errorf("TryDecrement() error = %v, want %s", err, errors.ErrCodeCounterIO)
			}
			if !errors.IsFatal(err) {
				t.Error("counter errors must be fatal")
			}
		})
	}

	c := newFileCounter(t, 1)
	if err := c.Set(ctx, -1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Set(-1) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestFileCounterVanished(t *testing.T) {
	c := newFileCounter(t, 1)
	if err := os.Remove(c.Path()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.TryDecrement(context.Background()); !errors.Is(err, errors.ErrCodeCounterIO) {
		t.Errorf("TryDecrement() error = %v, want %s", err, errors.ErrCodeCounterIO)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open(file) error: %v", err)
	}
	if _, ok := c.(*FileCounter); !ok {
		t.Errorf("Open(file) = %T, want *FileCounter", c)
	}

	c, err = Open("redis://localhost:6379/2?key=build:42")
	if err != nil {
		t.Fatalf("Open(redis) error: %v", err)
	}
	rc, ok := c.(*RedisCounter)
	if !ok {
		t.Fatalf("Open(redis) = %T, want *RedisCounter", c)
	}
	defer rc.Close()
	if rc.Key() != "build:42" {
		t.Errorf("Key() = %q, want build:42", rc.Key())
	}
	if db := rc.client.Options().DB; db != 2 {
		t.Errorf("DB = %d, want 2", db)
	}

	if _, err := Open(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(\"\") error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestRedisCounterDefaultKey(t *testing.T) {
	c, err := NewRedisCounter("redis://localhost:6379")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Key() != DefaultRedisKey {
		t.Errorf("Key() = %q, want %q", c.Key(), DefaultRedisKey)
	}
}

// TestRedisCounterLive runs against a real server when SYSRESOLVE_TEST_REDIS
// points at one.
func TestRedisCounterLive(t *testing.T) {
	addr := os.Getenv("SYSRESOLVE_TEST_REDIS")
	if addr == "" {
		t.Skip("SYSRESOLVE_TEST_REDIS not set")
	}

	ctx := context.Background()
	c, err := NewRedisCounter(addr + "?key=sysresolve:test:" + t.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, 1); err != nil {
		t.Fatal(err)
	}
	for _, want := range []int{1, 0} {
		got, err := c.TryDecrement(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("TryDecrement() = %d, want %d", got, want)
		}
	}
}

package heartbeat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer so the test can read while Run writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun_EmitsMarksAtCadence(t *testing.T) {
	buf := &syncBuffer{}
	beater := New(buf, 30*time.Millisecond, ".")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- beater.Run(ctx) }()

	// Two full intervals plus margin: ticks land at ~30ms and ~60ms.
	time.Sleep(75 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := buf.String()
	if got != ".." {
		t.Errorf("Expected exactly two marks, got %q", got)
	}
	if beater.Count() != 2 {
		t.Errorf("Expected count 2, got %d", beater.Count())
	}
	if strings.Contains(got, "\n") {
		t.Errorf("Expected no newlines between marks, got %q", got)
	}
}

func TestRun_StopsOnCancelBeforeFirstMark(t *testing.T) {
	buf := &syncBuffer{}
	beater := New(buf, time.Hour, ".")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := beater.Run(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if buf.String() != "" {
		t.Errorf("Expected no output, got %q", buf.String())
	}
	if beater.Count() != 0 {
		t.Errorf("Expected count 0, got %d", beater.Count())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write refused")
}

func TestRun_WriterError(t *testing.T) {
	beater := New(failingWriter{}, 5*time.Millisecond, ".")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := beater.Run(ctx); err == nil {
		t.Error("Expected an error from a failing writer, got nil")
	}
}

func TestRun_CustomMark(t *testing.T) {
	buf := &syncBuffer{}
	beater := New(buf, 10*time.Millisecond, "*")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- beater.Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()
	<-done

	if !strings.HasPrefix(buf.String(), "*") {
		t.Errorf("Expected marks to use '*', got %q", buf.String())
	}
}

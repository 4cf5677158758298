package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/gptcommit/internal/apperror"
)

type fakeLister struct {
	ids   []string
	err   error
	calls int
}

func (f *fakeLister) ListModels(ctx context.Context) ([]string, error) {
	f.calls++
	return f.ids, f.err
}

func TestList_PreservesOrder(t *testing.T) {
	f := &fakeLister{ids: []string{"b", "a", "c"}}
	ids, err := New(f).List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	// The result is a copy.
	ids[0] = "changed"
	if f.ids[0] != "b" {
		t.Error("List should not alias the lister's slice")
	}
}

func TestList_Empty(t *testing.T) {
	ids, err := New(&fakeLister{}).List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want empty", ids)
	}
}

func TestList_ServiceUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	f := &fakeLister{err: cause}

	_, err := New(f).List(context.Background())
	if !errors.Is(err, apperror.ErrServiceUnavailable) {
		t.Fatalf("error = %v, want ErrServiceUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be preserved")
	}
	if f.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", f.calls)
	}
}

func TestList_Cancelled(t *testing.T) {
	_, err := New(&fakeLister{err: context.Canceled}).List(context.Background())
	if apperror.ExitCode(err) != apperror.ExitInterrupted {
		t.Errorf("exit code = %d, want %d", apperror.ExitCode(err), apperror.ExitInterrupted)
	}
}

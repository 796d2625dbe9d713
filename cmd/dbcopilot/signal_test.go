package main

// Notes:
// - notifyContext: OS signal delivery is not exercised; only the context
//   lifecycle that serve and ask depend on is tested.

import (
	"context"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Context lifecycle
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("live until stopped", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		if ctx.Err() != nil {
			t.Fatalf("new context already done: %v", ctx.Err())
		}
		stop()
		if ctx.Err() == nil {
			t.Fatal("stop() did not cancel the context")
		}
	})

	t.Run("follows parent", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
		if ctx.Err() != context.Canceled {
			t.Errorf("ctx.Err() = %v, want context.Canceled", ctx.Err())
		}
	})
}

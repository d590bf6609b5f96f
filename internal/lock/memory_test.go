package lock

import (
	"context"
	"testing"
	"time"
)

func TestAcquireAndRelease(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	token, ok, err := l.Acquire(ctx, "k", time.Minute)
	if err != nil || !ok || token == "" {
		t.Fatalf("acquire: token=%q ok=%v err=%v", token, ok, err)
	}

	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); ok {
		t.Fatal("second acquire on a held key must fail")
	}

	n, err := l.Release(ctx, "k", token)
	if err != nil || n != 1 {
		t.Fatalf("release: n=%d err=%v", n, err)
	}

	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); !ok {
		t.Fatal("acquire after release must succeed")
	}
}

func TestReleaseWrongTokenIsNoOp(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	token, _, _ := l.Acquire(ctx, "k", time.Minute)

	n, err := l.Release(ctx, "k", "not-the-owner")
	if err != nil || n != 0 {
		t.Fatalf("wrong-token release: n=%d err=%v", n, err)
	}

	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); ok {
		t.Fatal("lock must still be held after a wrong-token release")
	}

	if n, _ := l.Release(ctx, "k", token); n != 1 {
		t.Fatal("owner release must still work")
	}
}

func TestLeaseExpiry(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	base := time.Now()
	now := base
	l.SetClock(func() time.Time { return now })

	oldToken, ok, _ := l.Acquire(ctx, "k", 30*time.Second)
	if !ok {
		t.Fatal("initial acquire failed")
	}

	now = base.Add(10 * time.Second)
	if _, ok, _ := l.Acquire(ctx, "k", 30*time.Second); ok {
		t.Fatal("acquire before expiry must fail")
	}

	now = base.Add(31 * time.Second)
	newToken, ok, _ := l.Acquire(ctx, "k", 30*time.Second)
	if !ok {
		t.Fatal("acquire after expiry must succeed")
	}

	// The previous holder's token no longer matches the new owner.
	if n, _ := l.Release(ctx, "k", oldToken); n != 0 {
		t.Fatal("expired holder must not release the new owner's lock")
	}
	if n, _ := l.Release(ctx, "k", newToken); n != 1 {
		t.Fatal("new owner release failed")
	}
}

func TestKeyNamespaces(t *testing.T) {
	if got := PaymentKey("+905551112233"); got != "lock:payment:+905551112233" {
		t.Fatalf("payment key = %q", got)
	}
	if got := WebhookKey("conv-1"); got != "lock:webhook:conv-1" {
		t.Fatalf("webhook key = %q", got)
	}
}

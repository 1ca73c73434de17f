package exam

import (
	"testing"
	"time"
)

type fakeNow struct {
	current time.Time
}

func (f *fakeNow) Now() time.Time {
	return f.current
}

func (f *fakeNow) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func TestClockInitialRemaining(t *testing.T) {
	now := &fakeNow{current: time.Unix(1_700_000_000, 0).UTC()}
	clock := NewClockAt(now.current.Add(80*time.Minute), now.Now)

	remaining, expired := clock.Tick()
	if expired {
		t.Fatal("clock must not expire with time left")
	}
	if remaining < 4799 || remaining > 4800 {
		t.Fatalf("expected remaining in [4799, 4800], got %d", remaining)
	}
}

func TestClockRemainingIsRecomputedNotDecremented(t *testing.T) {
	now := &fakeNow{current: time.Unix(1_700_000_000, 0).UTC()}
	clock := NewClockAt(now.current.Add(time.Minute), now.Now)

	// Jump time forward well past several missed tick periods.
	now.Advance(45 * time.Second)

	remaining, _ := clock.Tick()
	if remaining != 15 {
		t.Fatalf("expected 15s after a 45s jump, got %d", remaining)
	}
}

func TestClockExpiryFiresExactlyOnce(t *testing.T) {
	now := &fakeNow{current: time.Unix(1_700_000_000, 0).UTC()}
	clock := NewClockAt(now.current.Add(2*time.Second), now.Now)

	now.Advance(3 * time.Second)

	expiries := 0
	for idx := 0; idx < 5; idx++ {
		remaining, expired := clock.Tick()
		if remaining != 0 {
			t.Fatalf("expected 0 remaining past the deadline, got %d", remaining)
		}
		if expired {
			expiries++
		}
	}

	if expiries != 1 {
		t.Fatalf("expected exactly one expiry, got %d", expiries)
	}
}

func TestClockForegroundRecomputesAndExpires(t *testing.T) {
	now := &fakeNow{current: time.Unix(1_700_000_000, 0).UTC()}
	clock := NewClockAt(now.current.Add(10*time.Second), now.Now)

	clock.Background()
	if !clock.Backgrounded() {
		t.Fatal("expected backgrounded state")
	}

	// Deadline passes while backgrounded; no ticks fire in between.
	now.Advance(time.Minute)

	remaining, expired := clock.Foreground()
	if clock.Backgrounded() {
		t.Fatal("foreground must clear the backgrounded state")
	}
	if remaining != 0 || !expired {
		t.Fatalf("expected immediate expiry on foreground, got remaining=%d expired=%v", remaining, expired)
	}
}

func TestClockForegroundBeforeDeadline(t *testing.T) {
	now := &fakeNow{current: time.Unix(1_700_000_000, 0).UTC()}
	clock := NewClockAt(now.current.Add(time.Minute), now.Now)

	clock.Background()
	now.Advance(30 * time.Second)

	remaining, expired := clock.Foreground()
	if expired {
		t.Fatal("clock must not expire with time left")
	}
	if remaining != 30 {
		t.Fatalf("expected 30s after backgrounded drift, got %d", remaining)
	}
}

func TestClockRearmExpiry(t *testing.T) {
	now := &fakeNow{current: time.Unix(1_700_000_000, 0).UTC()}
	clock := NewClockAt(now.current, now.Now)

	if _, expired := clock.Tick(); !expired {
		t.Fatal("expected first expiry")
	}
	if _, expired := clock.Tick(); expired {
		t.Fatal("latched expiry must not fire again")
	}

	clock.RearmExpiry()
	if _, expired := clock.Tick(); !expired {
		t.Fatal("expected expiry to fire again after rearm")
	}
}

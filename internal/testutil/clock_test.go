package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestManualClock_Frozen(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewManualClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", c.Now(), start)
	}
	if !c.Now().Equal(c.Now()) {
		t.Error("repeated Now() calls must not advance the clock")
	}
}

func TestManualClock_Advance(t *testing.T) {
	c := NewManualClock(time.Unix(100, 0))

	c.Advance(5 * time.Second)
	if got, want := c.Now(), time.Unix(105, 0); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}

	c.Advance(500 * time.Millisecond)
	if got, want := c.Now(), time.Unix(105, int64(500*time.Millisecond)); !got.Equal(want) {
		t.Errorf("Now() after sub-second Advance = %v, want %v", got, want)
	}
}

func TestManualClock_Set(t *testing.T) {
	c := NewManualClock(time.Unix(100, 0))

	target := time.Unix(1316594821, 927108000)
	c.Set(target)
	if !c.Now().Equal(target) {
		t.Errorf("Now() after Set = %v, want %v", c.Now(), target)
	}
}

func TestManualClock_ConcurrentAccess(t *testing.T) {
	c := NewManualClock(time.Unix(0, 0))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Advance(time.Microsecond)
				_ = c.Now()
			}
		}()
	}
	wg.Wait()

	if got, want := c.Now(), time.Unix(0, int64(1000*time.Microsecond)); !got.Equal(want) {
		t.Errorf("Now() after concurrent advances = %v, want %v", got, want)
	}
}

package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type countingLoader struct{ n atomic.Int32 }

func (c *countingLoader) Load(context.Context) error {
	c.n.Add(1)
	return nil
}

func TestStartFileRefresher_LoadsEveryInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loader := &countingLoader{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartFileRefresher(ctx, loader, clock, 30*time.Second, nil)

	for want := int32(1); want <= 3; want++ {
		clock.Advance(30 * time.Second)
		deadline := time.Now().Add(2 * time.Second)
		for loader.n.Load() < want {
			if time.Now().After(deadline) {
				t.Fatalf("loads = %d, want %d", loader.n.Load(), want)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestStartFileRefresher_DisabledAndCancelled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loader := &countingLoader{}
	ctx, cancel := context.WithCancel(context.Background())

	StartFileRefresher(ctx, loader, clock, 0, nil)
	clock.Advance(time.Hour)
	time.Sleep(20 * time.Millisecond)
	if n := loader.n.Load(); n != 0 {
		t.Fatalf("disabled refresher loaded %d times", n)
	}

	StartFileRefresher(ctx, loader, clock, time.Minute, nil)
	cancel()
	time.Sleep(20 * time.Millisecond)
	clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	if n := loader.n.Load(); n > 1 {
		t.Fatalf("cancelled refresher loaded %d times", n)
	}
}

// Package expiry renders expiration countdowns for the document and its
// attachments and keeps them current while they are displayed.
package expiry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Refresh is how often a displayed countdown is recomputed.
const Refresh = 60 * time.Second

// DocumentKey identifies the document-level countdown.
const DocumentKey = "document"

// Format returns the human-readable time left until expiresAt.
func Format(expiresAt, now time.Time) string {
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return "Expired"
	}

	hours := int(diff / time.Hour)
	minutes := int((diff % time.Hour) / time.Minute)
	switch {
	case hours >= 24:
		days := hours / 24
		return fmt.Sprintf("Expires in %d %s", days, plural(days, "day"))
	case hours > 0:
		return fmt.Sprintf("Expires in %dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("Expires in %d %s", minutes, plural(minutes, "minute"))
	}
}

// Label is Format for an optional timestamp. Nil means no expiry and renders
// as an empty string.
func Label(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil {
		return ""
	}
	return Format(*expiresAt, now)
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// Countdowns runs one restartable periodic task per displayed expiration.
// Each task recomputes its text every Refresh until it is cancelled by a
// Reconcile that no longer lists it, or by Stop.
type Countdowns struct {
	clock    clockwork.Clock
	interval time.Duration
	onTick   func(key, text string)

	mu    sync.Mutex
	tasks map[string]*countdown
}

type countdown struct {
	expiresAt time.Time
	text      string
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewCountdowns builds an empty set. onTick, if non-nil, is called from the
// task goroutine each time a text is recomputed; it must not block.
func NewCountdowns(clock clockwork.Clock, onTick func(key, text string)) *Countdowns {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Countdowns{
		clock:    clock,
		interval: Refresh,
		onTick:   onTick,
		tasks:    make(map[string]*countdown),
	}
}

// Reconcile replaces the displayed set. Tasks for keys missing from targets,
// or whose expiration changed, are cancelled; new ones are started. A task
// whose target is unchanged keeps running on its existing schedule.
func (c *Countdowns) Reconcile(targets map[string]time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, task := range c.tasks {
		at, ok := targets[key]
		if ok && at.Equal(task.expiresAt) {
			continue
		}
		task.cancel()
		delete(c.tasks, key)
	}
	for key, at := range targets {
		if _, ok := c.tasks[key]; ok {
			continue
		}
		c.tasks[key] = c.startLocked(key, at)
	}
}

// Text returns the latest rendering for key.
func (c *Countdowns) Text(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	task, ok := c.tasks[key]
	if !ok {
		return "", false
	}
	return task.text, true
}

// Keys lists the running countdowns in sorted order.
func (c *Countdowns) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.tasks))
	for k := range c.tasks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stop cancels every task and waits for them to exit.
func (c *Countdowns) Stop() {
	c.mu.Lock()
	tasks := c.tasks
	c.tasks = make(map[string]*countdown)
	c.mu.Unlock()

	for _, task := range tasks {
		task.cancel()
		<-task.done
	}
}

func (c *Countdowns) startLocked(key string, at time.Time) *countdown {
	ctx, cancel := context.WithCancel(context.Background())
	task := &countdown{
		expiresAt: at,
		text:      Format(at, c.clock.Now()),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	ticker := c.clock.NewTicker(c.interval)
	go func() {
		defer close(task.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.Chan():
				c.update(ctx, key, task, Format(at, now))
			}
		}
	}()
	return task
}

func (c *Countdowns) update(ctx context.Context, key string, task *countdown, text string) {
	c.mu.Lock()
	if ctx.Err() != nil || c.tasks[key] != task {
		c.mu.Unlock()
		return
	}
	task.text = text
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(key, text)
	}
}

// Package poll drives a Scanner on a timer and fans results out to
// subscribers.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/portscope/portscope/internal/port"
)

// DefaultInterval is the poll cadence used when none is configured.
const DefaultInterval = 2 * time.Second

type subscriber struct {
	id int
	fn func([]port.PortEntry)
}

// Poller repeatedly scans and notifies subscribers with each successful
// result. Failed scans notify nobody and never perturb the timer; the
// most recent failure is kept for callers that want to surface it.
//
// Ticks are independent units of work: a scan still in flight when the
// next tick fires is not serialized against it, so subscribers may see
// out-of-order notifications under slow external tools. Scans are
// idempotent value snapshots, so this is tolerated rather than locked.
type Poller struct {
	scanner port.Scanner

	mu       sync.Mutex
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	running  bool
	subs     []subscriber
	nextID   int
	lastErr  error
}

// New creates a stopped poller. A non-positive interval falls back to
// DefaultInterval.
func New(scanner port.Scanner, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{scanner: scanner, interval: interval}
}

// Start performs one immediate scan-and-notify and arms the repeating
// timer. It is a no-op when already running.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.ticker = time.NewTicker(p.interval)
	p.done = make(chan struct{})

	go p.scanAndNotify()
	go p.loop(p.ticker, p.done)
}

func (p *Poller) loop(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			go p.scanAndNotify()
		}
	}
}

// Stop disarms the timer. Idempotent. In-flight scans finish on their
// own but no further ticks fire.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	p.ticker.Stop()
	close(p.done)
	p.ticker = nil
	p.done = nil
}

// SetInterval updates the poll cadence. When running, the timer re-arms
// immediately at the new interval rather than waiting out the old one.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = interval
	if p.running {
		p.ticker.Reset(interval)
	}
}

// Interval returns the current poll cadence.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// OnUpdate registers a subscriber invoked with each successful scan
// result, in registration order. The returned func removes exactly that
// subscriber and is safe to call more than once.
func (p *Poller) OnUpdate(fn func([]port.PortEntry)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs = append(p.subs, subscriber{id: id, fn: fn})
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// LastError returns the most recent scan failure, or nil if the last
// scan succeeded.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Poller) scanAndNotify() {
	entries, err := p.scanner.Scan(context.Background())

	p.mu.Lock()
	p.lastErr = err
	subs := make([]subscriber, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	if err != nil {
		return
	}
	for _, s := range subs {
		s.fn(entries)
	}
}

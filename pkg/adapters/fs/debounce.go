package fs

import (
	"sync"
	"time"

	"github.com/aretw0/swiftnote/pkg/core"
)

// debouncer coalesces bursts of events for the same note into one.
// An atomic write shows up as several fsnotify events; callers see one.
type debouncer struct {
	interval time.Duration
	emit     func(core.Event)

	mu      sync.Mutex
	pending map[int64]*pendingEvent
	stopped bool
	wg      sync.WaitGroup
}

type pendingEvent struct {
	event core.Event
	due   time.Time
	timer *time.Timer
}

func newDebouncer(interval time.Duration, emit func(core.Event)) *debouncer {
	return &debouncer{
		interval: interval,
		emit:     emit,
		pending:  make(map[int64]*pendingEvent),
	}
}

// add schedules e, merging it with any pending event for the same id.
func (d *debouncer) add(e core.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if p, ok := d.pending[e.ID]; ok {
		p.event = mergeEvents(p.event, e)
		p.due = time.Now().Add(d.interval)
		return
	}

	id := e.ID
	p := &pendingEvent{event: e, due: time.Now().Add(d.interval)}
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.interval, func() { d.fire(id) })
	d.pending[id] = p
}

func (d *debouncer) fire(id int64) {
	d.mu.Lock()
	p, ok := d.pending[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	if wait := time.Until(p.due); wait > 0 && !d.stopped {
		p.timer.Reset(wait)
		d.mu.Unlock()
		return
	}
	delete(d.pending, id)
	d.mu.Unlock()

	defer d.wg.Done()
	d.emit(p.event)
}

// stopAndWait drops events whose timers have not fired and waits for the
// in-flight ones. No emit runs after it returns.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for id, p := range d.pending {
		if p.timer.Stop() {
			delete(d.pending, id)
			d.wg.Done()
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// mergeEvents folds next into prev. A note created and then modified in the
// same burst is still a creation; a deletion always wins.
func mergeEvents(prev, next core.Event) core.Event {
	if next.Type == core.EventModify && prev.Type == core.EventCreate {
		next.Type = core.EventCreate
	}
	return next
}

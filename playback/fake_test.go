package playback

import (
	"context"
	"sort"
	"sync"
	"time"
)

// fakeElement records every call and lets tests end playback on demand.
type fakeElement struct {
	mu       sync.Mutex
	loaded   string
	playing  bool
	volume   float64
	position time.Duration
	ended    func()

	loadErr  error
	playErr  error
	hangLoad bool

	// beforePlay runs at the start of every Play, outside the element's lock.
	beforePlay func()

	loads, plays, pauses, seeks, mutedPlays, closes int
}

func newFakeElement() *fakeElement {
	return &fakeElement{volume: 1}
}

func (e *fakeElement) Load(ctx context.Context, source string) error {
	e.mu.Lock()
	e.loads++
	hang, err := e.hangLoad, e.loadErr
	e.mu.Unlock()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.loaded = source
	e.position = 0
	e.mu.Unlock()
	return nil
}

func (e *fakeElement) Play(context.Context) error {
	e.mu.Lock()
	hook := e.beforePlay
	e.mu.Unlock()
	if hook != nil {
		hook()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.volume == 0 {
		e.mutedPlays++
	} else {
		e.plays++
	}
	if e.playErr != nil {
		return e.playErr
	}
	e.playing = true
	return nil
}

func (e *fakeElement) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauses++
	e.playing = false
	return nil
}

func (e *fakeElement) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seeks++
	e.position = pos
	return nil
}

func (e *fakeElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *fakeElement) SetVolume(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	return nil
}

func (e *fakeElement) Position() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position, nil
}

func (e *fakeElement) Duration() (time.Duration, error) {
	return 10 * time.Second, nil
}

func (e *fakeElement) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ended = fn
}

func (e *fakeElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closes++
	e.playing = false
	return nil
}

// finish simulates the natural end of the source.
func (e *fakeElement) finish() {
	e.mu.Lock()
	e.playing = false
	fn := e.ended
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (e *fakeElement) isPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *fakeElement) counts() (loads, plays, pauses int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads, e.plays, e.pauses
}

// manualClock fires timers only when the test advances it.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every due timer in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

// Pending counts timers that are neither stopped nor fired.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// page wires a coordinator with a full-surah adapter and verse adapters, as a screen would.
type page struct {
	coord    *Coordinator
	clock    *manualClock
	adapters map[ID]*Adapter
	elements map[ID]*fakeElement
}

func newPage(shim *UnlockShim, ids ...ID) *page {
	p := &page{
		coord:    NewCoordinator(),
		clock:    &manualClock{},
		adapters: make(map[ID]*Adapter),
		elements: make(map[ID]*fakeElement),
	}

	for _, id := range ids {
		el := newFakeElement()
		a, err := NewAdapter(p.coord, id, el, AdapterOptions{
			Source: "https://cdn.example/" + string(id) + ".mp3",
			Clock:  p.clock,
			Shim:   shim,
		})
		if err != nil {
			panic(err)
		}
		p.adapters[id] = a
		p.elements[id] = el
	}
	return p
}

func (p *page) playing() []ID {
	var ids []ID
	for id, a := range p.adapters {
		if a.Status() == StatusPlaying {
			ids = append(ids, id)
		}
	}
	return ids
}

func (p *page) audible() []ID {
	var ids []ID
	for id, el := range p.elements {
		if el.isPlaying() {
			ids = append(ids, id)
		}
	}
	return ids
}

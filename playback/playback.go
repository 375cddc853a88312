// Package playback coordinates recitation audio so that at most one element on a page is audible at a time.
//
// A page mounts one Coordinator, one Adapter per audio-capable item (the full surah and every verse),
// and optionally a Driver that walks an ordered playlist of verses. Every play request, manual or
// automatic, goes through the same Coordinator.
package playback

import (
	"context"
	"time"
)

// ID identifies one audio-capable item on a page, e.g. "full" or "verse-7".
type ID string

// None is the empty identifier, meaning nothing holds the playback slot.
const None ID = ""

func (id ID) String() string {
	return string(id)
}

// Status is the lifecycle state of an Adapter.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusPlaying
	StatusPaused
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Element is the underlying audio-producing resource wrapped by an Adapter.
//
// Implementations must be safe for use from multiple goroutines. Load and Play may block;
// Pause, Seek and SetVolume are expected to return promptly.
type Element interface {
	// Load prepares source for playback and returns once it is ready to play.
	Load(ctx context.Context, source string) error

	// Play starts or resumes audible playback of the loaded source.
	Play(ctx context.Context) error

	// Pause suspends playback, keeping the position.
	Pause() error

	// Seek moves to an absolute position.
	Seek(pos time.Duration) error

	// Volume reports the current volume in [0,1].
	Volume() float64

	// SetVolume sets the volume in [0,1].
	SetVolume(v float64) error

	// Position reports the elapsed time of the loaded source.
	Position() (time.Duration, error)

	// Duration reports the total length of the loaded source.
	Duration() (time.Duration, error)

	// OnEnded registers the callback invoked when playback reaches the natural end of the source.
	OnEnded(fn func())

	// Close releases every resource held by the element.
	Close() error
}

// Handle is what the registry hands out: something that can be told to play.
type Handle interface {
	ID() ID
	Play(ctx context.Context) error
}

// Package player provides the media backends behind playback.Element.
//
// Both backends hand out one element per playback ID. The mpv backend shares a single
// idle mpv process between all elements of an engine; the beep backend decodes in-process.
package player

import (
	"fmt"
	"strings"

	"github.com/tilawah-cli/tilawah/playback"
)

const (
	BackendMpv  = "mpv"
	BackendBeep = "beep"
)

// Backends lists the accepted values of player.backend.
func Backends() []string {
	return []string{BackendMpv, BackendBeep}
}

// Engine creates elements and owns whatever they share.
type Engine interface {
	NewElement(id playback.ID) playback.Element
	Close() error
}

// Options configures an engine.
type Options struct {
	// MpvPath is the mpv binary. Looked up in PATH when empty.
	MpvPath string

	// Title is shown by mpv in its window title and media info.
	Title string
}

// New creates the engine for backend.
func New(backend string, options Options) (Engine, error) {
	switch strings.ToLower(backend) {
	case BackendMpv, "":
		return NewMPV(options), nil
	case BackendBeep:
		return NewBeep(), nil
	default:
		return nil, fmt.Errorf("unknown player backend %q, available: %s", backend, strings.Join(Backends(), ", "))
	}
}

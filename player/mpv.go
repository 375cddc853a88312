package player

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tilawah-cli/tilawah/log"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/where"
)

const socketWaitDelay = 100 * time.Millisecond

var (
	// ErrMpvNotFound is returned when no mpv binary can be found.
	ErrMpvNotFound = errors.New("mpv not found, install it or set player.mpv_path")

	errMpvExited  = errors.New("mpv exited")
	errSuperseded = errors.New("load superseded by another item")
)

// MPV is an engine backed by one idle mpv process controlled over JSON IPC.
// Elements take turns owning the process; an element that lost it reloads its source on Play.
type MPV struct {
	path  string
	title string

	startMu    sync.Mutex
	ipcMu      sync.Mutex
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	events     *EventListener

	mu      sync.Mutex
	owner   *mpvElement
	loading *loadWait
	closed  bool
}

type loadWait struct {
	owner *mpvElement
	done  chan error
}

func NewMPV(options Options) *MPV {
	return &MPV{
		path:  options.MpvPath,
		title: options.Title,
	}
}

func (m *MPV) NewElement(id playback.ID) playback.Element {
	return &mpvElement{engine: m, id: id, volume: 1}
}

// running reports whether the mpv process is alive.
func (m *MPV) running() bool {
	if m.exited == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// start launches mpv on first use, or again if it died.
func (m *MPV) start(ctx context.Context) error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return playback.ErrClosed
	}

	if m.running() {
		return nil
	}

	binary := m.path
	if binary == "" {
		found, err := exec.LookPath("mpv")
		if err != nil {
			return ErrMpvNotFound
		}
		binary = found
	}

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", suffix))

	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--really-quiet",
		"--pause=yes",
		"--input-ipc-server=" + m.socketPath,
	}
	if m.title != "" {
		args = append(args, "--title="+sanitizeTitle(m.title))
	}

	m.cmd = exec.Command(binary, args...)
	m.cmd.SysProcAttr = sysProcAttr()

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	m.mu.Lock()
	m.exited = exited
	m.mu.Unlock()
	go func(cmd *exec.Cmd) {
		err := cmd.Wait()
		log.Debugf("mpv: process exited: %v", err)
		close(exited)
	}(m.cmd)

	if err := m.waitForSocket(ctx); err != nil {
		_ = killProcess(m.cmd)
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.events = NewEventListener(m.socketPath, m.onEvent)
	if err := m.events.Start(); err != nil {
		_ = killProcess(m.cmd)
		return err
	}

	log.Infof("mpv: started %s (pid %d)", binary, m.cmd.Process.Pid)
	return nil
}

func (m *MPV) waitForSocket(ctx context.Context) error {
	ticker := time.NewTicker(socketWaitDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return errMpvExited
		case <-ticker.C:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
}

func (m *MPV) onEvent(event string, payload map[string]any) {
	switch event {
	case "file-loaded":
		m.mu.Lock()
		w := m.loading
		m.loading = nil
		m.mu.Unlock()

		if w != nil {
			w.done <- nil
		}

	case "end-file":
		reason, _ := payload["reason"].(string)

		m.mu.Lock()
		if w := m.loading; w != nil {
			if reason == "error" {
				m.loading = nil
				m.mu.Unlock()
				detail, _ := payload["file_error"].(string)
				w.done <- fmt.Errorf("mpv could not open the file: %s", detail)
				return
			}
			// The previous file was stopped to make room for the one being loaded.
			m.mu.Unlock()
			return
		}

		owner := m.owner
		if reason != "eof" || owner == nil {
			m.mu.Unlock()
			return
		}
		m.owner = nil
		m.mu.Unlock()

		owner.finished()

	case "disconnected":
		m.mu.Lock()
		w := m.loading
		m.loading = nil
		m.owner = nil
		m.mu.Unlock()

		if w != nil {
			w.done <- errMpvExited
		}
	}
}

// claim makes e the owner and registers a wait for its file to load.
// A load still pending for another element is failed.
func (m *MPV) claim(e *mpvElement) *loadWait {
	w := &loadWait{owner: e, done: make(chan error, 1)}

	m.mu.Lock()
	previous := m.loading
	m.loading = w
	m.owner = e
	m.mu.Unlock()

	if previous != nil {
		previous.done <- errSuperseded
	}
	return w
}

func (m *MPV) abandon(w *loadWait) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loading == w {
		m.loading = nil
	}
	if m.owner == w.owner {
		m.owner = nil
	}
}

func (m *MPV) owns(e *mpvElement) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner == e && m.running()
}

func (m *MPV) release(e *mpvElement) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.owner != e {
		return false
	}
	m.owner = nil
	return true
}

func (m *MPV) set(property string, value any) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

func (m *MPV) float(property string) (float64, error) {
	data, err := m.sendCommand("get_property", property)
	if err != nil {
		return 0, err
	}

	value, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected number, got %T", property, data)
	}
	return value, nil
}

// Close quits mpv, killing it if it does not exit in time.
func (m *MPV) Close() error {
	m.mu.Lock()
	m.closed = true
	m.owner = nil
	m.mu.Unlock()

	m.startMu.Lock()
	defer m.startMu.Unlock()

	if !m.running() {
		return nil
	}

	m.events.Stop()
	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// sanitizeMediaTarget keeps sources from being interpreted as mpv flags.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty source")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("control characters in source")
	}

	if strings.HasPrefix(l, "-") {
		return "", errors.New("source must not start with '-'")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}

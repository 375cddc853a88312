package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/tilawah-cli/tilawah/log"
)

// EventCallback receives every event mpv broadcasts, e.g. "file-loaded" or "end-file".
type EventCallback func(event string, payload map[string]any)

// EventListener keeps one connection open to receive mpv events.
type EventListener struct {
	socketPath string
	callback   EventCallback

	mu        sync.Mutex
	conn      net.Conn
	listening bool
	done      chan struct{}
}

func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Start connects and begins dispatching events on a background goroutine.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	el.conn = conn
	el.listening = true
	el.done = make(chan struct{})
	go el.readLoop(conn, el.done)

	log.Debugf("mpv: listening for events on %s", el.socketPath)
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	el.listening = false
	conn, done := el.conn, el.done
	el.mu.Unlock()

	_ = conn.Close()
	<-done
}

func (el *EventListener) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		el.dispatch(scanner.Bytes())
	}

	el.mu.Lock()
	stopped := !el.listening
	el.listening = false
	el.mu.Unlock()

	if !stopped {
		log.Warnf("mpv: event connection lost: %v", scanner.Err())
		el.callback("disconnected", nil)
	}
}

func (el *EventListener) dispatch(line []byte) {
	var payload map[string]any
	if err := json.Unmarshal(line, &payload); err != nil {
		return
	}

	if event, ok := payload["event"].(string); ok && event != "" {
		el.callback(event, payload)
	}
}

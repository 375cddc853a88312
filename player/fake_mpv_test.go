package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// fakeMpv speaks enough of mpv's JSON IPC to drive the engine without an mpv binary.
type fakeMpv struct {
	path string
	ln   net.Listener

	mu       sync.Mutex
	conns    []net.Conn
	props    map[string]any
	commands [][]any

	loadError bool
	hangLoad  bool
}

func newFakeMpv(t *testing.T) *fakeMpv {
	f := &fakeMpv{
		path:  filepath.Join(socketDir(t), "mpv.sock"),
		props: map[string]any{"duration": 30.0, "time-pos": 0.0, "pause": true, "volume": 100.0},
	}

	ln, err := net.Listen("unix", f.path)
	if err != nil {
		t.Fatal(err)
	}
	f.ln = ln
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.conns = append(f.conns, conn)
			f.mu.Unlock()
			go f.serve(conn)
		}
	}()
	return f
}

func (f *fakeMpv) serve(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil || len(req.Command) == 0 {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		f.mu.Unlock()

		// mpv interleaves events with responses.
		_, _ = fmt.Fprintln(conn, `{"event":"audio-reconfig"}`)

		data, errText, after := f.handle(req.Command)
		resp, _ := json.Marshal(map[string]any{"data": data, "error": errText, "request_id": req.RequestID})
		_, _ = conn.Write(append(resp, '\n'))

		if after != "" {
			f.broadcast(after)
		}
	}
}

func (f *fakeMpv) handle(command []any) (data any, errText string, after string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name, _ := command[0].(string)
	switch name {
	case "get_property":
		value, ok := f.props[command[1].(string)]
		if !ok {
			return nil, "property unavailable", ""
		}
		return value, "success", ""
	case "set_property":
		f.props[command[1].(string)] = command[2]
		return nil, "success", ""
	case "seek":
		f.props["time-pos"] = command[1]
		return nil, "success", ""
	case "loadfile":
		f.props["path"] = command[1]
		f.props["time-pos"] = 0.0
		switch {
		case f.hangLoad:
			return nil, "success", ""
		case f.loadError:
			return nil, "success", `{"event":"end-file","reason":"error","file_error":"loading failed"}`
		default:
			return nil, "success", `{"event":"file-loaded"}`
		}
	default:
		return nil, "success", ""
	}
}

func (f *fakeMpv) broadcast(line string) {
	f.mu.Lock()
	conns := append([]net.Conn(nil), f.conns...)
	f.mu.Unlock()

	for _, conn := range conns {
		_, _ = fmt.Fprintln(conn, line)
	}
}

// misbehave makes loadfile fail, or never finish.
func (f *fakeMpv) misbehave(loadError, hangLoad bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadError, f.hangLoad = loadError, hangLoad
}

func (f *fakeMpv) prop(name string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props[name]
}

func (f *fakeMpv) set(name string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props[name] = value
}

// count returns how many times a command was received.
func (f *fakeMpv) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int
	for _, c := range f.commands {
		if c[0] == name {
			n++
		}
	}
	return n
}

// socketDir stays short; unix socket paths are limited to about 100 bytes.
func socketDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// attach wires an engine to the fake as if start had launched it.
func (f *fakeMpv) attach(t *testing.T) *MPV {
	m := NewMPV(Options{})
	m.socketPath = f.path
	m.exited = make(chan struct{})
	m.events = NewEventListener(f.path, m.onEvent)
	if err := m.events.Start(); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		m.events.Stop()
		close(m.exited)
	})
	return m
}

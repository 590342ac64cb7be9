package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/media"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV is a media.Element backed by an mpv process driven over JSON-IPC.
// The process is started on the first Load and reused for every later one.
type MPV struct {
	opts   Options
	events *media.Emitter

	ipcMu      sync.Mutex // serializes IPC commands
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	listener   *EventListener

	mu         sync.Mutex
	src        media.Source
	loaded     bool
	paused     bool
	timePos    float64
	duration   float64
	lastUpdate time.Time
	closed     bool
}

// NewMPV returns an element; no process is spawned until Load.
func NewMPV(loop media.Poster, opts Options) *MPV {
	return &MPV{
		opts:   opts,
		events: media.NewEmitter(loop),
		paused: true,
	}
}

func (m *MPV) Events() *media.Emitter {
	return m.events
}

func (m *MPV) Source() media.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

// Load replaces the current file. mpv cannot expose decoded samples, so the source is never tapped.
func (m *MPV) Load(src media.Source) error {
	safeURL, err := sanitizeMediaTarget(src.URL)
	if err != nil {
		return media.LoadError{URL: src.URL, Err: err}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return media.ErrClosed
	}
	m.src = src
	m.loaded = false
	m.paused = true
	m.timePos = 0
	m.duration = 0
	m.mu.Unlock()

	m.opts.Metrics.IncLoad(BackendMPV, src.Analysable)

	go func() {
		if err := m.load(safeURL); err != nil {
			m.events.Emit(media.Event{Kind: media.Error, Err: media.LoadError{URL: src.URL, Err: err}})
		}
	}()
	return nil
}

func (m *MPV) load(target string) error {
	if err := m.start(); err != nil {
		return err
	}
	if _, err := m.sendCommand("set_property", "pause", true); err != nil {
		return err
	}
	_, err := m.sendCommand("loadfile", target, "replace")
	return err
}

// start spawns mpv in idle mode and attaches the event listener.
func (m *MPV) start() error {
	m.ipcMu.Lock()
	running := m.cmd != nil
	if running {
		select {
		case <-m.exited:
			running = false
		default:
		}
	}
	m.ipcMu.Unlock()

	if running {
		return nil
	}

	// os.TempDir for cross-platform support (macOS $TMPDIR is /var/folders/... not /tmp/)
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Vibe, randomBytes))

	// Only the socket and idle mode; the user's mpv.conf is respected.
	cmd := exec.Command("mpv",
		"--no-terminal",
		"--really-quiet",
		"--no-video",
		"--idle=yes",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
	)

	// Detach from parent process group to prevent cascading shell panics.
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	m.ipcMu.Lock()
	m.cmd = cmd
	m.exited = exited
	m.socketPath = socketPath
	m.ipcMu.Unlock()

	if err := waitForSocket(socketPath, exited); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(socketPath, m.handle)
	return m.listener.Start()
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func waitForSocket(socketPath string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// handle translates mpv notifications into element events.
func (m *MPV) handle(name string, data interface{}) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	var ev *media.Event

	switch name {
	case "file-loaded":
		m.loaded = true
		ev = &media.Event{Kind: media.LoadedMetadata}
	case "end-file":
		payload, _ := data.(map[string]interface{})
		reason, _ := payload["reason"].(string)
		switch reason {
		case "eof":
			m.paused = true
			ev = &media.Event{Kind: media.Ended, Time: m.duration}
		case "error":
			cause, _ := payload["file_error"].(string)
			ev = &media.Event{Kind: media.Error, Time: m.timePos, Err: media.LoadError{URL: m.src.URL, Err: fmt.Errorf("mpv: %s", cause)}}
		}
	case "time-pos":
		pos, ok := data.(float64)
		if !ok {
			break
		}
		m.timePos = pos
		if !m.paused && time.Since(m.lastUpdate) >= timeUpdateInterval {
			m.lastUpdate = time.Now()
			ev = &media.Event{Kind: media.TimeUpdate, Time: pos}
		}
	case "duration":
		if d, ok := data.(float64); ok {
			m.duration = d
		}
	case "pause":
		paused, ok := data.(bool)
		if !ok || paused == m.paused {
			break
		}
		m.paused = paused
		if m.loaded {
			kind := media.Play
			if paused {
				kind = media.Pause
			}
			ev = &media.Event{Kind: kind, Time: m.timePos}
		}
	}
	m.mu.Unlock()

	if ev != nil {
		m.events.Emit(*ev)
	}
}

func (m *MPV) ready() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return media.ErrClosed
	}
	if !m.loaded {
		return errNotLoaded
	}
	return nil
}

func (m *MPV) Play() error {
	if err := m.ready(); err != nil {
		return err
	}
	_, err := m.sendCommand("set_property", "pause", false)
	return err
}

func (m *MPV) Pause() error {
	if err := m.ready(); err != nil {
		return nil
	}
	_, err := m.sendCommand("set_property", "pause", true)
	return err
}

func (m *MPV) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *MPV) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timePos
}

func (m *MPV) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	if err := m.ready(); err != nil {
		return nil
	}
	if _, err := m.sendCommand("seek", seconds, "absolute"); err != nil {
		return err
	}

	m.mu.Lock()
	m.timePos = seconds
	m.mu.Unlock()
	return nil
}

func (m *MPV) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("invalid rate %v", rate)
	}
	if m.Socket() == "" {
		return nil
	}
	_, err := m.sendCommand("set_property", "speed", rate)
	return err
}

func (m *MPV) Tap() (media.Tap, error) {
	return nil, media.ErrNotAnalysable
}

// Socket returns the IPC socket path, empty before the process starts.
func (m *MPV) Socket() string {
	m.ipcMu.Lock()
	defer m.ipcMu.Unlock()
	return m.socketPath
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	if m.listener != nil {
		m.listener.Stop()
	}

	socketPath := m.Socket()
	if socketPath == "" {
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		// Force kill if graceful quit didn't work
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(socketPath)
	return nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
// Prevents flag injection from untrusted resolver scripts.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
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

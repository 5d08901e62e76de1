// Package motion provides panorama.MotionSource implementations: a
// synthetic mock, an MQTT subscriber, a WebSocket endpoint for phone
// browsers and an NMEA heading reader on a serial port.
//
// Every source delivers from its own goroutine. The view applies the most
// recent sample on its next Update.
package motion

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/phanxgames/panorama"
)

var (
	// ErrRunning is returned by Start on a source that is already started.
	ErrRunning = errors.New("motion: source already started")
	// ErrNotRunning is returned by Stop on a source that is not started.
	ErrNotRunning = errors.New("motion: source not started")
)

var (
	_ panorama.MotionSource = (*MockSource)(nil)
	_ panorama.MotionSource = (*MQTTSource)(nil)
	_ panorama.MotionSource = (*WebSocketSource)(nil)
	_ panorama.MotionSource = (*SerialHeadingSource)(nil)
)

// feed holds the current subscriber of a source and counts what went
// through it.
type feed struct {
	mu        sync.Mutex
	deliver   func(panorama.AttitudeSample)
	delivered uint64
	dropped   uint64
}

func (f *feed) start(deliver func(panorama.AttitudeSample)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deliver != nil {
		return ErrRunning
	}
	f.deliver = deliver
	return nil
}

func (f *feed) stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deliver == nil {
		return ErrNotRunning
	}
	f.deliver = nil
	return nil
}

func (f *feed) running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deliver != nil
}

// send hands s to the subscriber. It reports false when stopped.
func (f *feed) send(s panorama.AttitudeSample) bool {
	f.mu.Lock()
	d := f.deliver
	if d != nil {
		f.delivered++
	}
	f.mu.Unlock()
	if d == nil {
		return false
	}
	d(s)
	return true
}

func (f *feed) drop() {
	f.mu.Lock()
	f.dropped++
	f.mu.Unlock()
}

// Stats counts samples a source delivered and payloads it dropped.
type Stats struct {
	Delivered uint64
	Dropped   uint64
}

func (f *feed) stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Stats{Delivered: f.delivered, Dropped: f.dropped}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discardLogger()
	}
	return l
}

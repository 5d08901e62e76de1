package motion

import (
	"math"
	"sync"
	"time"

	"github.com/phanxgames/panorama"
)

// MockSource generates smoothly changing attitudes of a phone held upright
// and slowly turned around, for demos and tests without hardware.
type MockSource struct {
	rate time.Duration
	feed feed

	mu    sync.Mutex
	stop  chan struct{}
	done  chan struct{}
	start time.Time
}

// NewMockSource creates a mock source ticking at rate. A non-positive rate
// defaults to 60 Hz.
func NewMockSource(rate time.Duration) *MockSource {
	if rate <= 0 {
		rate = time.Second / 60
	}
	return &MockSource{rate: rate}
}

// Available always reports true.
func (m *MockSource) Available() bool { return true }

// Start begins ticking.
func (m *MockSource) Start(deliver func(panorama.AttitudeSample)) error {
	if err := m.feed.start(deliver); err != nil {
		return err
	}
	m.mu.Lock()
	m.start = time.Now()
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done, start := m.stop, m.done, m.start
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.rate)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				m.feed.send(m.At(now.Sub(start)))
			}
		}
	}()
	return nil
}

// Stop ends ticking and waits for the ticker goroutine.
func (m *MockSource) Stop() error {
	if err := m.feed.stop(); err != nil {
		return err
	}
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.mu.Unlock()
	close(stop)
	<-done
	return nil
}

// Stats returns delivery counts.
func (m *MockSource) Stats() Stats {
	return m.feed.stats()
}

// At returns the attitude the mock reports elapsed after Start: the phone
// is upright, sways slightly in roll and pitch, and turns 30°/s.
func (m *MockSource) At(elapsed time.Duration) panorama.AttitudeSample {
	t := elapsed.Seconds()
	roll := 20 * math.Sin(t)
	pitch := 90 + 15*math.Cos(t*0.7)
	yaw := math.Mod(t*30, 360)
	return panorama.AttitudeSample{
		Timestamp: m.start.Add(elapsed),
		Attitude:  DeviceOrientation(yaw, pitch, roll),
		Frame:     panorama.FrameZVertical,
	}
}

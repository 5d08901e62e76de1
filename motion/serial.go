package motion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/phanxgames/panorama"
)

// SerialConfig configures a SerialHeadingSource.
type SerialConfig struct {
	PortName string // e.g. /dev/ttyUSB0
	BaudRate uint   // defaults to 4800, the NMEA 0183 rate
	Logger   *slog.Logger
}

// SerialHeadingSource reads NMEA 0183 sentences from a gyrocompass or GPS
// on a serial port and turns headings into level attitudes, so a panorama
// follows the heading of a vehicle. HDT sentences give the heading; RMC
// course over ground is used when no HDT has been seen.
type SerialHeadingSource struct {
	cfg    SerialConfig
	feed   feed
	logger *slog.Logger
	open   func(serial.OpenOptions) (io.ReadWriteCloser, error)

	mu   sync.Mutex
	port io.ReadWriteCloser
	done chan struct{}
}

// NewSerialHeadingSource creates a source for cfg.PortName. The port is
// opened on Start.
func NewSerialHeadingSource(cfg SerialConfig) *SerialHeadingSource {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 4800
	}
	return &SerialHeadingSource{
		cfg:    cfg,
		logger: orDiscard(cfg.Logger).With("source", "serial", "port", cfg.PortName),
		open:   serial.Open,
	}
}

// Available reports whether the port device exists.
func (s *SerialHeadingSource) Available() bool {
	if s.cfg.PortName == "" {
		return false
	}
	_, err := os.Stat(s.cfg.PortName)
	return err == nil
}

// Start opens the port and reads sentences until Stop.
func (s *SerialHeadingSource) Start(deliver func(panorama.AttitudeSample)) error {
	if err := s.feed.start(deliver); err != nil {
		return err
	}
	port, err := s.open(serial.OpenOptions{
		PortName:        s.cfg.PortName,
		BaudRate:        s.cfg.BaudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		_ = s.feed.stop()
		return fmt.Errorf("motion: open %s: %w", s.cfg.PortName, err)
	}
	s.logger.Info("port opened", "baud", s.cfg.BaudRate)

	done := make(chan struct{})
	s.mu.Lock()
	s.port, s.done = port, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		err := ReadHeadings(port, func(h HeadingFix) {
			s.feed.send(panorama.AttitudeSample{
				Timestamp: h.Time,
				Attitude:  Heading(h.Degrees),
				Frame:     panorama.FrameRender,
			})
		}, s.logger)
		if err != nil && s.feed.running() {
			s.logger.Warn("read failed", "err", err)
		}
	}()
	return nil
}

// Stop closes the port and waits for the reader.
func (s *SerialHeadingSource) Stop() error {
	if err := s.feed.stop(); err != nil {
		return err
	}
	s.mu.Lock()
	port, done := s.port, s.done
	s.port, s.done = nil, nil
	s.mu.Unlock()
	err := port.Close()
	<-done
	return err
}

// Stats returns delivery counts.
func (s *SerialHeadingSource) Stats() Stats {
	return s.feed.stats()
}

// HeadingFix is one heading reading.
type HeadingFix struct {
	Time    time.Time
	Degrees float64 // clockwise from north
	True    bool    // from HDT rather than course over ground
}

// ReadHeadings scans NMEA sentences from r and calls fn for each heading.
// Unparseable lines are skipped. It returns nil at EOF.
func ReadHeadings(r io.Reader, fn func(HeadingFix), logger *slog.Logger) error {
	logger = orDiscard(logger)
	reader := bufio.NewReader(r)
	sawHDT := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sentence, perr := nmea.Parse(line)
		if perr != nil {
			logger.Debug("nmea parse error", "err", perr, "line", line)
			continue
		}

		switch sentence.DataType() {
		case nmea.TypeHDT:
			m := sentence.(nmea.HDT)
			sawHDT = true
			fn(HeadingFix{Time: time.Now(), Degrees: m.Heading, True: true})
		case nmea.TypeRMC:
			m := sentence.(nmea.RMC)
			if sawHDT || m.Validity != nmea.ValidRMC {
				continue
			}
			fn(HeadingFix{Time: time.Now(), Degrees: m.Course})
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

package motion

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/panorama"
)

const (
	hdtSentence  = "$GPHDT,274.07,T*03"
	hdtSentence2 = "$HEHDT,45.5,T*1B"
	rmcValid     = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"
	rmcVoid      = "$GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*7D"
	ggaSentence  = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"
)

func readAll(t *testing.T, input string) []HeadingFix {
	t.Helper()
	var fixes []HeadingFix
	err := ReadHeadings(strings.NewReader(input), func(h HeadingFix) {
		fixes = append(fixes, h)
	}, nil)
	require.NoError(t, err)
	return fixes
}

func TestReadHeadings(t *testing.T) {
	input := strings.Join([]string{
		rmcVoid,
		"garbage",
		rmcValid,
		ggaSentence,
		"$GPHDT,274.07,T*FF", // bad checksum
		hdtSentence,
		rmcValid, // ignored once HDT is seen
		hdtSentence2,
	}, "\r\n")

	fixes := readAll(t, input)
	require.Len(t, fixes, 3)
	assert.InDelta(t, 84.4, fixes[0].Degrees, 1e-9)
	assert.False(t, fixes[0].True)
	assert.InDelta(t, 274.07, fixes[1].Degrees, 1e-9)
	assert.True(t, fixes[1].True)
	assert.InDelta(t, 45.5, fixes[2].Degrees, 1e-9)
}

func TestReadHeadingsEmpty(t *testing.T) {
	assert.Empty(t, readAll(t, ""))
	assert.Empty(t, readAll(t, "\n\n"))
}

type pipePort struct {
	*io.PipeReader
}

func (pipePort) Write(p []byte) (int, error) { return len(p), nil }

func TestSerialHeadingSource(t *testing.T) {
	pr, pw := io.Pipe()
	src := NewSerialHeadingSource(SerialConfig{PortName: "/dev/ttyFAKE"})
	assert.EqualValues(t, 4800, src.cfg.BaudRate)

	var opened serial.OpenOptions
	src.open = func(o serial.OpenOptions) (io.ReadWriteCloser, error) {
		opened = o
		return pipePort{pr}, nil
	}

	var c collector
	require.NoError(t, src.Start(c.deliver))
	assert.Equal(t, "/dev/ttyFAKE", opened.PortName)
	assert.EqualValues(t, 8, opened.DataBits)

	go func() {
		_, _ = io.WriteString(pw, hdtSentence2+"\r\n")
	}()
	require.Eventually(t, func() bool { return c.len() == 1 }, time.Second, time.Millisecond)

	s := c.last()
	assert.Equal(t, panorama.FrameRender, s.Frame)
	assert.True(t, s.Attitude.ApproxEqualThreshold(Heading(45.5), 1e-12))

	require.NoError(t, src.Stop())
	assert.Equal(t, Stats{Delivered: 1}, src.Stats())
}

func TestSerialOpenFailure(t *testing.T) {
	src := NewSerialHeadingSource(SerialConfig{PortName: "/dev/ttyFAKE"})
	src.open = func(serial.OpenOptions) (io.ReadWriteCloser, error) {
		return nil, os.ErrNotExist
	}
	err := src.Start(func(panorama.AttitudeSample) {})
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, src.Stop(), ErrNotRunning)
}

func TestSerialAvailable(t *testing.T) {
	assert.False(t, NewSerialHeadingSource(SerialConfig{}).Available())
	assert.False(t, NewSerialHeadingSource(SerialConfig{PortName: "/nonexistent/tty"}).Available())

	path := filepath.Join(t.TempDir(), "tty")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	assert.True(t, NewSerialHeadingSource(SerialConfig{PortName: path}).Available())
}

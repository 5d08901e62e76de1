// Package config loads the YAML configuration shared by the example
// programs: the window and view setup, the panorama file, the motion
// source and logging.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/panorama"
	"github.com/phanxgames/panorama/motion"
)

// Config is the top-level configuration file.
type Config struct {
	View   ViewConfig   `yaml:"view"`
	Image  ImageConfig  `yaml:"image"`
	Motion MotionConfig `yaml:"motion"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// ViewConfig sets up the panorama.View. Angles are in degrees.
type ViewConfig struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	FieldOfView      float64 `yaml:"field_of_view"`
	Azimuth          float64 `yaml:"azimuth"`
	Altitude         float64 `yaml:"altitude"`
	VRMode           bool    `yaml:"vr_mode"`
	StereoSeparation float64 `yaml:"stereo_separation"`
	TouchToPan       bool    `yaml:"touch_to_pan"`
	PinchToZoom      bool    `yaml:"pinch_to_zoom"`
	ShowTouches      bool    `yaml:"show_touches"`
	Calibration      string  `yaml:"calibration"` // full or heading
}

// ImageConfig names the panorama file.
type ImageConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Motion source kinds.
const (
	SourceNone      = "none"
	SourceMock      = "mock"
	SourceMQTT      = "mqtt"
	SourceWebSocket = "websocket"
	SourceSerial    = "serial"
)

// MotionConfig selects and configures the motion source.
type MotionConfig struct {
	Source         string          `yaml:"source"`
	OrientToDevice bool            `yaml:"orient_to_device"`
	Mock           MockConfig      `yaml:"mock"`
	MQTT           MQTTConfig      `yaml:"mqtt"`
	WebSocket      WebSocketConfig `yaml:"websocket"`
	Serial         SerialConfig    `yaml:"serial"`
}

type MockConfig struct {
	Rate time.Duration `yaml:"rate"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

type WebSocketConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud uint   `yaml:"baud"`
}

// RenderConfig configures the ebiten host.
type RenderConfig struct {
	Title         string  `yaml:"title"`
	Scale         float64 `yaml:"scale"`
	ShowFPS       bool    `yaml:"show_fps"`
	ScreenshotDir string  `yaml:"screenshot_dir"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			Width:       1024,
			Height:      640,
			FieldOfView: panorama.DefaultFieldOfView,
			TouchToPan:  true,
			PinchToZoom: true,
			Calibration: "full",
		},
		Motion: MotionConfig{
			Source:    SourceNone,
			Mock:      MockConfig{Rate: time.Second / 60},
			MQTT:      MQTTConfig{Broker: "tcp://localhost:1883", Topic: motion.DefaultTopic},
			WebSocket: WebSocketConfig{Listen: ":8080", Path: "/attitude"},
			Serial:    SerialConfig{Baud: 4800},
		},
		Render: RenderConfig{
			Title:         "Panorama",
			Scale:         2,
			ScreenshotDir: "screenshots",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.View.Width <= 0 || c.View.Height <= 0 {
		return fmt.Errorf("view: width and height must be positive, got %dx%d", c.View.Width, c.View.Height)
	}
	probe := panorama.DefaultViewConfiguration(1, 1)
	if err := probe.SetFieldOfView(c.View.FieldOfView); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if err := probe.SetStereoSeparation(mgl64.DegToRad(c.View.StereoSeparation)); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if _, err := c.View.calibrationMode(); err != nil {
		return err
	}
	if c.Render.Scale < 1 {
		return fmt.Errorf("render: scale must be at least 1, got %v", c.Render.Scale)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("log: unknown format %q", c.Log.Format)
	}

	m := c.Motion
	switch strings.ToLower(m.Source) {
	case SourceNone, "":
		if m.OrientToDevice {
			return errors.New("motion: orient_to_device needs a source")
		}
	case SourceMock:
	case SourceMQTT:
		if m.MQTT.Broker == "" {
			return errors.New("motion: mqtt.broker is required")
		}
		if m.MQTT.QoS > 2 {
			return fmt.Errorf("motion: mqtt.qos must be 0, 1 or 2, got %d", m.MQTT.QoS)
		}
	case SourceWebSocket:
		if m.WebSocket.Listen == "" {
			return errors.New("motion: websocket.listen is required")
		}
		if !strings.HasPrefix(m.WebSocket.Path, "/") {
			return fmt.Errorf("motion: websocket.path must start with '/', got %q", m.WebSocket.Path)
		}
	case SourceSerial:
		if m.Serial.Port == "" {
			return errors.New("motion: serial.port is required")
		}
	default:
		return fmt.Errorf("motion: unknown source %q", m.Source)
	}
	return nil
}

func (v ViewConfig) calibrationMode() (panorama.CalibrationMode, error) {
	switch strings.ToLower(v.Calibration) {
	case "", "full":
		return panorama.CalibrateFull, nil
	case "heading":
		return panorama.CalibrateHeading, nil
	}
	return 0, fmt.Errorf("view: unknown calibration %q", v.Calibration)
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log: %w", err)
	}
	return lvl, nil
}

// NewView builds a view from the view section.
func (c *Config) NewView() (*panorama.View, error) {
	vc := c.View
	v := panorama.NewView(float64(vc.Width), float64(vc.Height))
	if err := v.SetFieldOfView(vc.FieldOfView); err != nil {
		return nil, err
	}
	if err := v.SetStereoSeparation(mgl64.DegToRad(vc.StereoSeparation)); err != nil {
		return nil, err
	}
	mode, err := vc.calibrationMode()
	if err != nil {
		return nil, err
	}
	v.SetVRMode(vc.VRMode)
	v.SetTouchToPan(vc.TouchToPan)
	v.SetPinchToZoom(vc.PinchToZoom)
	v.SetShowTouches(vc.ShowTouches)
	v.SetCalibrationMode(mode)
	v.OrientToAzimuthAltitude(mgl64.DegToRad(vc.Azimuth), mgl64.DegToRad(vc.Altitude))
	return v, nil
}

// NewLogger builds the slog logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := c.Log.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewMotionSource builds the configured motion source, or nil for none.
func (c *Config) NewMotionSource(logger *slog.Logger) (panorama.MotionSource, error) {
	m := c.Motion
	switch strings.ToLower(m.Source) {
	case SourceNone, "":
		return nil, nil
	case SourceMock:
		return motion.NewMockSource(m.Mock.Rate), nil
	case SourceMQTT:
		return motion.NewMQTTSource(motion.MQTTConfig{
			Broker:   m.MQTT.Broker,
			ClientID: m.MQTT.ClientID,
			Topic:    m.MQTT.Topic,
			QoS:      m.MQTT.QoS,
			Logger:   logger,
		}), nil
	case SourceWebSocket:
		return motion.NewWebSocketSource(logger), nil
	case SourceSerial:
		return motion.NewSerialHeadingSource(motion.SerialConfig{
			PortName: m.Serial.Port,
			BaudRate: m.Serial.Baud,
			Logger:   logger,
		}), nil
	}
	return nil, fmt.Errorf("config: unknown motion source %q", m.Source)
}

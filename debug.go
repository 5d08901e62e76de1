package panorama

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// debugStats holds per-update view state. Only collected when View.debug
// is true.
type debugStats struct {
	azimuth     float64 // degrees
	altitude    float64 // degrees
	fieldOfView float64
	touches     int
	pinching    bool
	zooming     bool
	sensor      SensorState
	applied     uint64
	skipped     uint64
	injected    int
	events      int
}

// collectStats snapshots the view for debugLog. Caller must hold v.mu.
func (v *View) collectStats() debugStats {
	return debugStats{
		azimuth:     mgl64.RadToDeg(v.orientation.Azimuth()),
		altitude:    mgl64.RadToDeg(v.orientation.Altitude()),
		fieldOfView: v.config.fieldOfView,
		touches:     v.touches.Count(),
		pinching:    v.pinch.active,
		zooming:     v.zoom != nil,
		sensor:      v.sensor.State(),
		applied:     v.sensor.stats.Applied,
		skipped:     v.sensor.stats.Skipped,
		injected:    len(v.injectQueue),
		events:      len(v.pending),
	}
}

// debugLog writes the stats to the view logger at debug level.
func (v *View) debugLog(stats debugStats) {
	if !v.debug {
		return
	}
	v.logger.Debug("view",
		slog.Float64("azimuth", stats.azimuth),
		slog.Float64("altitude", stats.altitude),
		slog.Float64("fov", stats.fieldOfView),
		slog.Int("touches", stats.touches),
		slog.Bool("pinching", stats.pinching),
		slog.Bool("zooming", stats.zooming),
	)
	v.logger.Debug("sensor",
		slog.Bool("enabled", stats.sensor == SensorEnabled),
		slog.Uint64("applied", stats.applied),
		slog.Uint64("skipped", stats.skipped),
		slog.Int("injected", stats.injected),
		slog.Int("events", stats.events),
	)
}

// String returns the state name.
func (s SensorState) String() string {
	if s == SensorEnabled {
		return "enabled"
	}
	return "disabled"
}

// String returns the mode name.
func (m CalibrationMode) String() string {
	if m == CalibrateFull {
		return "full"
	}
	return "heading"
}

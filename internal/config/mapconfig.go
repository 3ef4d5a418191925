package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// MapConfig drives how the dashboard map is drawn.
type MapConfig struct {
	// Facility colors are assigned by selection order, wrapping around.
	Palette      []string  `yaml:"palette"`
	BadDebtColor string    `yaml:"bad_debt_color"`
	Baseline     string    `yaml:"baseline"` // YYYY-MM-DD
	Zoom         int       `yaml:"zoom"`
	FacilityIcon IconSpec  `yaml:"facility_icon"`
	Tiles        TileLayer `yaml:"tiles"`
	Animation    Animation `yaml:"animation"`
}

type IconSpec struct {
	Image string `yaml:"image" json:"image"`
	Size  int    `yaml:"size" json:"size"`
}

type TileLayer struct {
	URL         string `yaml:"url" json:"url"`
	Attribution string `yaml:"attribution" json:"attribution"`
	Name        string `yaml:"name" json:"name"`
}

// Animation mirrors the options of the timestamped GeoJSON player.
type Animation struct {
	Period               string `yaml:"period" json:"period"`
	Duration             string `yaml:"duration" json:"duration"`
	TransitionTime       int    `yaml:"transition_time" json:"transition_time"`
	AutoPlay             bool   `yaml:"auto_play" json:"auto_play"`
	Loop                 bool   `yaml:"loop" json:"loop"`
	LoopButton           bool   `yaml:"loop_button" json:"loop_button"`
	TimeSliderDragUpdate bool   `yaml:"time_slider_drag_update" json:"time_slider_drag_update"`
	DateOptions          string `yaml:"date_options" json:"date_options"`
}

func DefaultMapConfig() MapConfig {
	return MapConfig{
		Palette: []string{
			"#34ECF4", "#f43c34", "#8CF434", "#9C34F4",
			"#F49C34", "#F4348C", "#34F43C", "#3C34F4",
		},
		BadDebtColor: "#FF0000",
		Baseline:     "2019-05-31",
		Zoom:         11,
		FacilityIcon: IconSpec{Image: "rd_logo.png", Size: 35},
		Tiles: TileLayer{
			URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Esri",
			Name:        "Esri Satellite",
		},
		Animation: Animation{
			Period:               "P1M",
			Duration:             "P1M",
			TransitionTime:       200,
			AutoPlay:             true,
			Loop:                 false,
			LoopButton:           true,
			TimeSliderDragUpdate: true,
			DateOptions:          "YYYY/MM/DD",
		},
	}
}

// LoadMapConfig overlays the YAML file at path on the defaults. A missing file
// is not an error.
func LoadMapConfig(path string) (MapConfig, error) {
	cfg := DefaultMapConfig()

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c MapConfig) Validate() error {
	if len(c.Palette) == 0 {
		return errors.New("palette must list at least one color")
	}
	if c.BadDebtColor == "" {
		return errors.New("bad_debt_color is required")
	}
	if _, err := c.BaselineDate(); err != nil {
		return err
	}
	return nil
}

// BaselineDate parses Baseline as midnight UTC.
func (c MapConfig) BaselineDate() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", c.Baseline, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid baseline %q: %w", c.Baseline, err)
	}
	return t, nil
}

// ColorFor returns the palette color for the i-th selected facility.
func (c MapConfig) ColorFor(i int) string {
	return c.Palette[i%len(c.Palette)]
}

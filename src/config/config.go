package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "mocap.cfg.json"

// RenderConfig holds the figure settings shared by video frames and plots.
type RenderConfig struct {
	Width     float64 `json:"width" mapstructure:"width"`
	Height    float64 `json:"height" mapstructure:"height"`
	DPI       int     `json:"dpi" mapstructure:"dpi"`
	RangeMin  float64 `json:"rangeMin" mapstructure:"rangeMin"`
	RangeMax  float64 `json:"rangeMax" mapstructure:"rangeMax"`
	DomainMin float64 `json:"domainMin" mapstructure:"domainMin"`
	DomainMax float64 `json:"domainMax" mapstructure:"domainMax"`
	FPS       float64 `json:"fps" mapstructure:"fps"`
	SystemCOM bool    `json:"systemCOM" mapstructure:"systemCOM"`
}

// ColorConfig holds the marker classification colors.
type ColorConfig struct {
	Marker    string `json:"marker" mapstructure:"marker"`
	Highlight string `json:"highlight" mapstructure:"highlight"`
	RigidBody string `json:"rigidBody" mapstructure:"rigidBody"`
}

// VideoConfig holds the ffmpeg encoder settings.
type VideoConfig struct {
	FFmpeg string `json:"ffmpeg" mapstructure:"ffmpeg"`
	Codec  string `json:"codec" mapstructure:"codec"`
	PixFmt string `json:"pixFmt" mapstructure:"pixFmt"`
}

// AnimateConfig holds the interactive scatter animation settings.
type AnimateConfig struct {
	Stride          int `json:"stride" mapstructure:"stride"`
	FrameDurationMs int `json:"frameDurationMs" mapstructure:"frameDurationMs"`
}

// Config is the full typed configuration.
type Config struct {
	LogLevel  string        `json:"logLevel" mapstructure:"logLevel"`
	LogFormat string        `json:"logFormat" mapstructure:"logFormat"`
	Render    RenderConfig  `json:"render" mapstructure:"render"`
	Colors    ColorConfig   `json:"colors" mapstructure:"colors"`
	Video     VideoConfig   `json:"video" mapstructure:"video"`
	Animate   AnimateConfig `json:"animate" mapstructure:"animate"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "console")

	viper.SetDefault("render.width", 10.0)
	viper.SetDefault("render.height", 7.0)
	viper.SetDefault("render.dpi", 96)
	viper.SetDefault("render.rangeMin", -0.75)
	viper.SetDefault("render.rangeMax", 0.2)
	viper.SetDefault("render.domainMin", -1.0)
	viper.SetDefault("render.domainMax", 1.0)
	viper.SetDefault("render.fps", 120.0)
	viper.SetDefault("render.systemCOM", false)

	viper.SetDefault("colors.marker", "#606060")
	viper.SetDefault("colors.highlight", "#000000")
	viper.SetDefault("colors.rigidBody", "#FF0000")

	viper.SetDefault("video.ffmpeg", "ffmpeg")
	viper.SetDefault("video.codec", "libx264")
	viper.SetDefault("video.pixFmt", "yuv420p")

	viper.SetDefault("animate.stride", 1)
	viper.SetDefault("animate.frameDurationMs", 8)
}

// Load reads configuration from the JSON file in configDir on top of the
// default values.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// IsNotFound reports whether err means no config file was present.
func IsNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

// Get returns the typed configuration.
func Get() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Animate.Stride < 1 {
		cfg.Animate.Stride = 1
	}
	return cfg, nil
}

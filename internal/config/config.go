// ABOUTME: Viper-backed configuration for the bridge
// ABOUTME: Defaults, optional YAML config file, and environment overrides
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved bridge configuration.
type Config struct {
	Name       string
	Port       int
	EnableMDNS bool
	UseTUI     bool
	LogFile    string
	Debug      bool

	Volume        int
	ChunkMs       int
	SilenceGapMs  int
	WaveFile      string
	ToneFrequency float64
	Loopback      bool
}

// ChunkDuration returns the playback chunk duration.
func (c Config) ChunkDuration() time.Duration {
	return time.Duration(c.ChunkMs) * time.Millisecond
}

// SilenceGap returns the waveform loop-boundary gap.
func (c Config) SilenceGap() time.Duration {
	return time.Duration(c.SilenceGapMs) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "uvcbridge")
	v.SetDefault("port", 8190)
	v.SetDefault("mdns", true)
	v.SetDefault("tui", true)
	v.SetDefault("logfile", "uvcbridge.log")
	v.SetDefault("debug", false)
	v.SetDefault("volume", 80)
	v.SetDefault("chunk_ms", 400)
	v.SetDefault("silence_gap_ms", 1000)
	v.SetDefault("wave_file", "")
	v.SetDefault("tone_frequency", 440.0)
	v.SetDefault("loopback", false)
}

// Load resolves configuration from defaults, an optional config file, and
// UVCBRIDGE_* environment variables. A missing config file is fine; a
// malformed one is not.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("uvcbridge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config %s: %w", configFile, err)
		}
		log.Printf("Loaded config from %s", configFile)
	}

	cfg := Config{
		Name:          v.GetString("name"),
		Port:          v.GetInt("port"),
		EnableMDNS:    v.GetBool("mdns"),
		UseTUI:        v.GetBool("tui"),
		LogFile:       v.GetString("logfile"),
		Debug:         v.GetBool("debug"),
		Volume:        v.GetInt("volume"),
		ChunkMs:       v.GetInt("chunk_ms"),
		SilenceGapMs:  v.GetInt("silence_gap_ms"),
		WaveFile:      v.GetString("wave_file"),
		ToneFrequency: v.GetFloat64("tone_frequency"),
		Loopback:      v.GetBool("loopback"),
	}

	if cfg.Volume < 0 || cfg.Volume > 100 {
		return Config{}, fmt.Errorf("volume out of range: %d", cfg.Volume)
	}
	if cfg.ChunkMs <= 0 {
		return Config{}, fmt.Errorf("chunk_ms must be positive: %d", cfg.ChunkMs)
	}

	return cfg, nil
}

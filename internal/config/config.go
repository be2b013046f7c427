// Package config loads the process-wide settings for the voxelgate server.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the voxelgate connection/world core.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Logging
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json

	// Metrics / health
	MetricsAddr string `yaml:"metrics_addr"`

	// Protocol
	CompressThreshold int  `yaml:"compress_threshold"` // bytes; <0 disables compression
	MojauthEnabled    bool `yaml:"mojauth_enabled"`
	MaxConns          int  `yaml:"max_conns"` // 0 = unlimited

	// World / presentation
	ServerID         string `yaml:"server_id"`
	ServerBrand      string `yaml:"server_brand"`
	Motd             string `yaml:"motd"`
	Version          string `yaml:"version"`
	FaviconPath      string `yaml:"favicon_path"`
	KickFooter       string `yaml:"kick_footer"`
	DefaultDimID     string `yaml:"default_dim_id"`
	DefaultDimType   string `yaml:"default_dim_type"`
	DefaultDimHeight int    `yaml:"default_dim_height"` // in blocks; sections = height/16
	MinViewDistance  int32  `yaml:"min_view_distance"`  // initial ViewDistance on login
	MaxViewDistance  int32  `yaml:"max_view_distance"`  // 1..=32
	RejectNewConns   bool   `yaml:"reject_new_conns"`   // admission control: refuse all new logins
	RejectReason     string `yaml:"reject_reason"`      // kick message used when RejectNewConns is set

	// Timing
	TickInterval  time.Duration `yaml:"tick_interval"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	KeepaliveSend time.Duration `yaml:"keepalive_send_interval"`
	KeepaliveWait time.Duration `yaml:"keepalive_wait_timeout"`
}

// Default returns a Server config with sensible defaults.
func Default() Server {
	return Server{
		BindAddress:       "0.0.0.0",
		Port:              25565,
		LogLevel:          "info",
		LogFormat:         "text",
		MetricsAddr:       "127.0.0.1:9090",
		CompressThreshold: 256,
		MojauthEnabled:    true,
		MaxConns:          0,
		ServerID:          "",
		ServerBrand:       "voxelgate",
		Motd:              "A voxelgate server",
		Version:           "1.21",
		KickFooter:        "disconnected from voxelgate",
		DefaultDimID:      "minecraft:overworld",
		DefaultDimType:    "minecraft:overworld",
		DefaultDimHeight:  384,
		MinViewDistance:   2,
		MaxViewDistance:   10,
		RejectNewConns:    false,
		RejectReason:      "Server is not accepting new connections",
		TickInterval:      50 * time.Millisecond,
		WriteTimeout:      250 * time.Millisecond,
		KeepaliveSend:     2500 * time.Millisecond,
		KeepaliveWait:     5 * time.Second,
	}
}

// Load loads a Server config from a YAML file, falling back to defaults for
// anything the file doesn't set. Missing files are not an error.
func Load(path string) (Server, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv resolves the config path from VOXELGATE_CONFIG, defaulting to
// "config.yaml" in the working directory.
func LoadFromEnv() (Server, error) {
	path := os.Getenv("VOXELGATE_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	return Load(path)
}

// SectionCount returns the number of 16-block ChunkSections for the
// configured default dimension height (minimum 1).
func (s Server) SectionCount() int {
	n := s.DefaultDimHeight / 16
	if n < 1 {
		return 1
	}
	return n
}

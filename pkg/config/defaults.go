package config

import (
	"strings"
	"time"

	"github.com/marmos91/blockfs/internal/bytesize"
	"github.com/marmos91/blockfs/pkg/disk"
)

// DefaultImageName is the image key used when none is configured.
const DefaultImageName = "fs_image.bin"

// ApplyDefaults fills zero-valued fields with defaults. Explicit values are
// preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyDiskDefaults(&cfg.Disk)
	applyImageDefaults(&cfg.Image)
}

// applyLoggingDefaults sets logging defaults and normalizes the level.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	// Logs go to stderr so they never interleave with shell output on stdout.
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyDiskDefaults(cfg *DiskConfig) {
	if cfg.BlockSize == 0 {
		cfg.BlockSize = bytesize.ByteSize(disk.BlockSize)
	}
	if cfg.TotalBlocks == 0 {
		cfg.TotalBlocks = disk.TotalBlocks
	}
}

func applyImageDefaults(cfg *ImageConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "file"
	}
	if cfg.Name == "" {
		cfg.Name = DefaultImageName
	}
	if cfg.File.Dir == "" {
		cfg.File.Dir = "."
	}
	if cfg.Badger.Dir == "" {
		cfg.Badger.Dir = "/tmp/blockfs-badger"
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.S3.Timeout == 0 {
		cfg.S3.Timeout = 30 * time.Second
	}
}

// GetDefaultConfig returns a Config with every default applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Telemetry: TelemetryConfig{
			Insecure:   true,
			SampleRate: 1.0,
		},
		Shell: ShellConfig{
			Color:      true,
			SaveOnExit: true,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}

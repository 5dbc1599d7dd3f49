package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/blockfs/internal/bytesize"
	"github.com/marmos91/blockfs/pkg/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolate points the default config location at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, disk.DefaultGeometry(), cfg.Disk.Geometry())
	assert.Equal(t, "file", cfg.Image.Backend)
	assert.Equal(t, DefaultImageName, cfg.Image.Name)
	assert.Equal(t, ".", cfg.Image.File.Dir)
	assert.Equal(t, 30*time.Second, cfg.Image.S3.Timeout)
	assert.True(t, cfg.Shell.Color)
	assert.True(t, cfg.Shell.SaveOnExit)
	assert.False(t, cfg.Compat.LeakBlocksOnRemove)

	require.NoError(t, Validate(cfg))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoad_FromFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
logging:
  level: debug
  format: json
disk:
  block_size: 1KiB
  total_blocks: 64
image:
  backend: badger
  name: lab.img
  badger:
    dir: /var/lib/blockfs
  s3:
    timeout: 5s
shell:
  color: false
compat:
  leak_blocks_on_remove: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, bytesize.KiB, cfg.Disk.BlockSize)
	assert.Equal(t, disk.Geometry{BlockSize: 1024, TotalBlocks: 64}, cfg.Disk.Geometry())
	assert.Equal(t, "badger", cfg.Image.Backend)
	assert.Equal(t, "lab.img", cfg.Image.Name)
	assert.Equal(t, "/var/lib/blockfs", cfg.Image.Badger.Dir)
	assert.Equal(t, 5*time.Second, cfg.Image.S3.Timeout)
	assert.False(t, cfg.Shell.Color)
	assert.True(t, cfg.Shell.SaveOnExit, "omitted keys keep their defaults")
	assert.True(t, cfg.Compat.LeakBlocksOnRemove)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "disk:\n  total_blocks: 64\n")

	t.Setenv("BLOCKFS_DISK_TOTAL_BLOCKS", "32")
	t.Setenv("BLOCKFS_DISK_BLOCK_SIZE", "4KiB")
	t.Setenv("BLOCKFS_COMPAT_LEAK_BLOCKS_ON_REMOVE", "true")
	t.Setenv("BLOCKFS_IMAGE_BACKEND", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Disk.TotalBlocks)
	assert.Equal(t, 4*bytesize.KiB, cfg.Disk.BlockSize)
	assert.True(t, cfg.Compat.LeakBlocksOnRemove)
	assert.Equal(t, "memory", cfg.Image.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"BadLevel", "logging:\n  level: loud\n", "Logging.Level"},
		{"BadBackend", "image:\n  backend: ftp\n", "Image.Backend"},
		{"S3WithoutBucket", "image:\n  backend: s3\n", "S3.Bucket"},
		{"BadBlockSize", "disk:\n  block_size: huge\n", "block_size"},
		{"NegativeBlocks", "disk:\n  total_blocks: -1\n", "Disk.TotalBlocks"},
		{"NameWithSlash", "image:\n  name: a/b\n", "Image.Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_Rules(t *testing.T) {
	t.Run("S3CredentialsPair", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Image.Backend = "s3"
		cfg.Image.S3.Bucket = "images"
		cfg.Image.S3.AccessKeyID = "AKIA"

		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")

		cfg.Image.S3.SecretAccessKey = "secret"
		assert.NoError(t, Validate(cfg))
	})

	t.Run("TelemetrySampleRate", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Telemetry.SampleRate = 1.5
		assert.Error(t, Validate(cfg))
	})

	t.Run("MetricsPort", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Metrics.Port = 70000
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max")
	})

	t.Run("ReportsEveryViolation", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Logging.Format = "xml"
		cfg.Disk.TotalBlocks = 0
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Logging.Format")
		assert.Contains(t, err.Error(), "Disk.TotalBlocks")
	})
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Disk.BlockSize = 4 * bytesize.KiB
	cfg.Image.Backend = "memory"
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "block_size: 4KiB")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestInitConfig(t *testing.T) {
	dir := isolate(t)

	path, err := InitConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "blockfs", "config.yaml"), path)
	assert.True(t, DefaultConfigExists())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# blockfs configuration file")

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &parsed))
	for _, section := range []string{"logging", "telemetry", "metrics", "disk", "image", "shell", "compat"} {
		assert.Contains(t, parsed, section)
	}

	_, err = InitConfig("", false)
	assert.Error(t, err, "existing file requires force")

	_, err = InitConfig("", true)
	assert.NoError(t, err)
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blockfs config init")
}

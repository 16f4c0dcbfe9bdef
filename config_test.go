package echogrid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	const doc = `
channels:
  - name: 38kHz
    frequency: 38
    max_depth: 1200
  - name: 120kHz
    frequency: 120
    max_depth: 250
extended: true
min_good: 50
accept_good: 50
single_channel_output: false
templates:
  clean: "{worksheet}_{channel}_cleaned.csv"
`
	path := filepath.Join(t.TempDir(), "merge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Channels, 2)
	assert.Equal(t, "120kHz", cfg.Channels[1].Name)
	assert.Equal(t, 250.0, cfg.Channels[1].MaxDepth)
	assert.True(t, cfg.Extended)
	assert.Equal(t, 50, cfg.MinGood)

	// the explicit template survives, the rest fall back to defaults
	assert.Equal(t, "A_38kHz_cleaned.csv", cfg.exportName("A", cfg.Channels[0], SourceClean))
	assert.Equal(t, "A_38kHz_Sv_raw.csv", cfg.exportName("A", cfg.Channels[0], SourceRaw))
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Channels: []ChannelConfig{{Name: "38kHz", Frequency: 38, MaxDepth: 1200}},
		}
	}

	t.Run("fills default templates", func(t *testing.T) {
		cfg := valid()
		require.NoError(t, cfg.Validate())
		assert.Len(t, cfg.Templates, sourceKindCount)
	})

	t.Run("no channels", func(t *testing.T) {
		cfg := Config{}
		assert.ErrorIs(t, cfg.Validate(), ErrNoChannels)
	})

	t.Run("unnamed channel", func(t *testing.T) {
		cfg := valid()
		cfg.Channels[0].Name = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive max depth", func(t *testing.T) {
		cfg := valid()
		cfg.Channels[0].MaxDepth = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("threshold out of range", func(t *testing.T) {
		cfg := valid()
		cfg.MinGood = 101
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidThreshold)

		cfg = valid()
		cfg.AcceptGood = -1
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidThreshold)
	})

	t.Run("template without worksheet placeholder", func(t *testing.T) {
		cfg := valid()
		cfg.Templates = map[string]string{"clean": "{channel}_Sv.csv"}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidTemplate)
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synrais/PadMap-GO/pkg/assets"
)

func writeIni(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "padmap.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIniIsValid(t *testing.T) {
	path := writeIni(t, string(assets.DefaultPadMapIni))

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, 0.5, cfg.PadMap.TriggerThreshold)
	assert.Equal(t, 60, cfg.PadMap.PollingRate)
	assert.True(t, cfg.PadMap.AutoRestart)
	assert.Equal(t, "space", cfg.Mapping["A"])
	assert.Equal(t, "escape", cfg.Mapping["B"])
}

func TestMinimalMapping(t *testing.T) {
	path := writeIni(t, "[mappings]\nA = space\n")

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)

	_, err = cfg.Validate()
	require.NoError(t, err)

	// Defaults survive a sparse file.
	assert.Equal(t, 0.5, cfg.PadMap.TriggerThreshold)
	assert.Equal(t, 60, cfg.PadMap.PollingRate)
	assert.Equal(t, map[string]string{"A": "space"}, cfg.Mapping)
}

func TestSectionNamesAreCaseInsensitive(t *testing.T) {
	path := writeIni(t, `[PadMap]
polling_rate = 30

[MAPPINGS]
A = space
`)

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)

	_, err = cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.PadMap.PollingRate)
	assert.Equal(t, map[string]string{"A": "space"}, cfg.Mapping)
}

func TestThresholdOutOfRange(t *testing.T) {
	path := writeIni(t, `[padmap]
trigger_threshold = 1.5

[mappings]
A = space
`)

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)

	_, err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trigger_threshold")
}

func TestPollingRateMustBePositive(t *testing.T) {
	path := writeIni(t, `[padmap]
polling_rate = 0

[mappings]
A = space
`)

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)

	_, err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "polling_rate")
}

func TestUnknownKeyIsError(t *testing.T) {
	path := writeIni(t, "[mappings]\nA = warpdrive\n")

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)

	_, err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warpdrive")
}

func TestUnknownButtonIsWarning(t *testing.T) {
	path := writeIni(t, `[mappings]
A = space
TURBO = escape
`)

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "TURBO")

	// The bad entry is dropped, the good one stays.
	assert.Equal(t, map[string]string{"A": "space"}, cfg.Mapping)
}

func TestEmptyMappingIsError(t *testing.T) {
	path := writeIni(t, "[padmap]\npolling_rate = 60\n")

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)

	_, err = cfg.Validate()
	require.Error(t, err)
}

func TestMissingFileIsError(t *testing.T) {
	_, err := LoadUserConfig(filepath.Join(t.TempDir(), "nope.ini"))
	require.Error(t, err)
}

func TestDeviceFilterList(t *testing.T) {
	path := writeIni(t, `[padmap]
device_filter = gamepad,controller

[mappings]
A = space
`)

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gamepad", "controller"}, cfg.PadMap.DeviceFilter)
}

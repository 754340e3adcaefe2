package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/synrais/PadMap-GO/pkg/assets"
	"github.com/synrais/PadMap-GO/pkg/input"
)

const (
	// IniPathEnv overrides the config file location.
	IniPathEnv = "PADMAP_INI"
	// DataDirEnv overrides the runtime data directory.
	DataDirEnv = "PADMAP_DATA_DIR"

	iniName        = "padmap.ini"
	defaultDataDir = "/tmp/.padmap"
)

// ---- Config Structs ----

type PadMapConfig struct {
	TriggerThreshold float64  `ini:"trigger_threshold"`
	PollingRate      int      `ini:"polling_rate"`
	AutoRestart      bool     `ini:"auto_restart"`
	DeviceFilter     []string `ini:"device_filter,omitempty" delim:","`
}

type UserConfig struct {
	AppPath string            `ini:"-"`
	IniPath string            `ini:"-"`
	PadMap  PadMapConfig      `ini:"padmap,omitempty"`
	Mapping map[string]string `ini:"-"`
}

// BaseDir is the directory the binary runs from, where padmap.ini
// lives.
func BaseDir() string {
	exe, err := os.Executable()
	if err != nil {
		cwd, _ := os.Getwd()
		return cwd
	}
	return filepath.Dir(exe)
}

// DataDir is where the PID record, session journal and log live.
func DataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	return defaultDataDir
}

func RecordPath() string {
	return filepath.Join(DataDir(), "padmap.pid")
}

func LogPath() string {
	return filepath.Join(DataDir(), "padmap.log")
}

func JournalPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// EnsureIni writes the embedded default config next to the binary when
// none exists yet, and returns the path in use.
func EnsureIni() (string, error) {
	iniPath := os.Getenv(IniPathEnv)
	if iniPath == "" {
		iniPath = filepath.Join(BaseDir(), iniName)
	}
	if _, err := os.Stat(iniPath); os.IsNotExist(err) {
		if err := os.WriteFile(iniPath, assets.DefaultPadMapIni, 0644); err != nil {
			return "", fmt.Errorf("failed to write default ini: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to check ini: %w", err)
	}
	return iniPath, nil
}

// LoadUserConfig loads padmap.ini into a UserConfig, applying defaults.
func LoadUserConfig(iniPath string) (*UserConfig, error) {
	exePath, _ := os.Executable()

	cfg := &UserConfig{
		AppPath: exePath,
		IniPath: iniPath,
		PadMap: PadMapConfig{
			TriggerThreshold: 0.5,
			PollingRate:      60,
			AutoRestart:      true,
		},
		Mapping: make(map[string]string),
	}

	file, err := ini.Load(iniPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load %s: %w", iniPath, err)
	}

	// Normalize case-insensitive section and key names. Button keys in
	// [mappings] get uppercased again below, so lowercasing them here
	// is harmless.
	for _, section := range file.Sections() {
		origName := section.Name()
		lowerName := strings.ToLower(origName)
		if lowerName != origName {
			dest := file.Section(lowerName)
			for _, key := range section.Keys() {
				dest.NewKey(strings.ToLower(key.Name()), key.Value())
			}
		}
	}

	if err := file.MapTo(cfg); err != nil {
		return cfg, fmt.Errorf("failed to map %s: %w", iniPath, err)
	}

	if sec, err := file.GetSection("mappings"); err == nil {
		for _, key := range sec.Keys() {
			cfg.Mapping[strings.ToUpper(key.Name())] = strings.ToLower(strings.TrimSpace(key.Value()))
		}
	}

	return cfg, nil
}

// Validate checks the loaded configuration. Unknown logical buttons are
// dropped and reported as warnings; everything else wrong is a hard
// error and the engine must not start.
func (c *UserConfig) Validate() ([]string, error) {
	var warnings []string

	if c.PadMap.TriggerThreshold < 0 || c.PadMap.TriggerThreshold > 1 {
		return warnings, fmt.Errorf("trigger_threshold %v out of range [0,1]", c.PadMap.TriggerThreshold)
	}
	if c.PadMap.PollingRate < 1 {
		return warnings, fmt.Errorf("polling_rate %d must be a positive integer", c.PadMap.PollingRate)
	}

	for button, key := range c.Mapping {
		if _, ok := input.ButtonFromName(button); !ok {
			warnings = append(warnings, fmt.Sprintf("unknown button %q in [mappings], ignoring", button))
			delete(c.Mapping, button)
			continue
		}
		if _, ok := input.KeyCode(key); !ok {
			return warnings, fmt.Errorf("unknown key %q mapped to button %s", key, button)
		}
	}

	if len(c.Mapping) == 0 {
		return warnings, fmt.Errorf("no valid entries in [mappings]")
	}

	return warnings, nil
}

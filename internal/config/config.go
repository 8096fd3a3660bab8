package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-backbit/internal/fsutil"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "backbit"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "BACKBIT"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// Platform used by build when neither the command line nor a description names one
	Platform string `mapstructure:"platform"`

	Build struct {
		// Reject a cartridge combined with a program, disk images or extended data
		ExclusiveCartridge bool `mapstructure:"exclusive_cartridge"`
	} `mapstructure:"build"`

	Extract struct {
		OutputDir string `mapstructure:"output_dir"` // empty: next to the container
	} `mapstructure:"extract"`

	Info struct {
		Format string `mapstructure:"format"` // text, yaml, json or plist
		Digest string `mapstructure:"digest"` // sha256, blake2b, blake3 or empty
	} `mapstructure:"info"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	initOnce sync.Once
	mu       sync.Mutex
)

// Initialize sets up the configuration system once per process
func Initialize(cfgFile string) error {
	var err error
	initOnce.Do(func() {
		err = Reload(cfgFile)
	})
	return err
}

// Reload reads the configuration again, from cfgFile when set or from the standard
// search paths otherwise, and replaces Instance.
func Reload(cfgFile string) error {
	cfg, used, err := Load(cfgFile)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	Instance = cfg
	ConfigFile = used
	ConfigLoaded = used != ""
	return nil
}

// Load reads a configuration without touching the global state. It returns the file
// that was used, or an empty string when only defaults and environment variables apply.
func Load(cfgFile string) (AppConfig, string, error) {
	var cfg AppConfig
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	used := ""
	if readErr := v.ReadInConfig(); readErr != nil {
		// A missing file in the search paths is fine, an explicit or unreadable one is not
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			return cfg, "", fmt.Errorf("error reading config file: %w", readErr)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, "", fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, used, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	for key, value := range Defaults().Settings() {
		v.SetDefault(key, value)
	}
}

// Defaults returns the configuration used when nothing is set
func Defaults() AppConfig {
	var cfg AppConfig
	cfg.LogFormat = "human"
	cfg.Platform = "c64"
	cfg.Info.Format = "text"
	return cfg
}

// Settings returns the configuration as flat viper keys
func (c AppConfig) Settings() map[string]interface{} {
	return map[string]interface{}{
		"debug":                     c.Debug,
		"log_format":                c.LogFormat,
		"log_file":                  c.LogFile,
		"platform":                  c.Platform,
		"build.exclusive_cartridge": c.Build.ExclusiveCartridge,
		"extract.output_dir":        c.Extract.OutputDir,
		"info.format":               c.Info.Format,
		"info.digest":               c.Info.Digest,
	}
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")

	configDir, err := fsutil.GetConfigDir(AppName)
	if err == nil {
		v.AddConfigPath(configDir)
	}

	if !isRunningInPipeline() {
		v.AddConfigPath("/etc/" + AppName)
	}
}

// Current returns a copy of the active configuration
func Current() AppConfig {
	mu.Lock()
	defer mu.Unlock()
	return Instance
}

// Update applies fn to the active configuration, for command line overrides
func Update(fn func(*AppConfig)) {
	mu.Lock()
	defer mu.Unlock()
	fn(&Instance)
}

// SaveConfig saves cfg to a file; the format follows the file extension
func SaveConfig(cfg AppConfig, filePath string) error {
	saveV := viper.New()
	saveV.SetConfigFile(filePath)

	for k, v := range cfg.Settings() {
		saveV.Set(k, v)
	}

	configDir := filepath.Dir(filePath)
	if err := fsutil.CreateDirIfNotExists(configDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return saveV.WriteConfig()
}

// isRunningInPipeline returns true if running in a CI/CD pipeline environment
func isRunningInPipeline() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("PIPELINE") == "true" ||
		os.Getenv("GITHUB_ACTIONS") == "true" ||
		os.Getenv("JENKINS_URL") != ""
}

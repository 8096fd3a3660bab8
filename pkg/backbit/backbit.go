// Package backbit is the embedding API: it builds containers from structural
// descriptions without going through the command line.
package backbit

import (
	"fmt"
	"path/filepath"

	"github.com/deploymenttheory/go-backbit/internal/bbt"
	"github.com/deploymenttheory/go-backbit/internal/config"
	"github.com/deploymenttheory/go-backbit/internal/description"
	"github.com/deploymenttheory/go-backbit/internal/logger"
	"gopkg.in/yaml.v3"
)

// InitOptions contains options for initializing the API
type InitOptions struct {
	ConfigFile  string // Path to configuration file
	Debug       bool   // Enable debug logging
	LogFormat   string // Log format: "human" or "json"
	LogFile     string // Path to log file
	SuppressLog bool   // Suppress all logging
}

// BuildResult describes a container that was written
type BuildResult struct {
	Output    string
	Platform  string
	Chunks    int
	Size      int64
	Bootable  bool
	Truncated bool
}

var initialized bool

// Initialize loads the configuration and sets up logging. Calling it again is a no-op.
func Initialize(options InitOptions) error {
	if initialized {
		return nil
	}

	configErr := config.Initialize(options.ConfigFile)

	config.Update(func(c *config.AppConfig) {
		if options.Debug {
			c.Debug = true
		}
		if options.LogFormat != "" {
			c.LogFormat = options.LogFormat
		}
		if options.LogFile != "" {
			c.LogFile = options.LogFile
		}
	})

	if !options.SuppressLog {
		cfg := config.Current()
		logConfig := logger.LoggerConfig{
			Debug:     cfg.Debug,
			LogFormat: cfg.LogFormat,
			LogFile:   cfg.LogFile,
		}
		if err := logger.InitLogger(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.LogInfo("BackBit API initialized", map[string]interface{}{
			"config_file": options.ConfigFile,
			"debug":       options.Debug,
		})
		if configErr != nil {
			logger.LogWarn("Configuration initialization warning", map[string]interface{}{
				"error": configErr.Error(),
			})
		}
	}

	initialized = true
	return nil
}

// DefaultOptions returns the default initialization options
func DefaultOptions() InitOptions {
	return InitOptions{
		LogFormat: "human",
	}
}

// BuildFromDescription builds output from a YAML, JSON or plist description file.
// Relative input paths are resolved against the description's directory.
func BuildFromDescription(descFile, output string) (*BuildResult, error) {
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	d, err := description.Load(descFile)
	if err != nil {
		return nil, err
	}
	return build(d, filepath.Dir(descFile), output)
}

// BuildFromYAML builds output from a YAML description held in memory. Relative input
// paths are resolved against baseDir.
func BuildFromYAML(descYAML, baseDir, output string) (*BuildResult, error) {
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	var d description.Description
	if err := yaml.Unmarshal([]byte(descYAML), &d); err != nil {
		return nil, fmt.Errorf("failed to parse description: %w", err)
	}
	return build(&d, baseDir, output)
}

func build(d *description.Description, baseDir, output string) (*BuildResult, error) {
	if d.Platform == "" {
		d.Platform = config.Current().Platform
	}
	m, err := d.Manifest(baseDir, description.OpenInput)
	if err != nil {
		return nil, err
	}

	policy := bbt.Policy{ExclusiveCartridge: config.Current().Build.ExclusiveCartridge}
	if err := bbt.Build(output, m, bbt.WithPolicy(policy)); err != nil {
		return nil, err
	}

	report, err := description.Inspect(output, nil)
	if err != nil {
		return nil, err
	}
	return &BuildResult{
		Output:    output,
		Platform:  report.Platform,
		Chunks:    len(report.Chunks),
		Size:      report.Size,
		Bootable:  m.IsBootable(),
		Truncated: report.Truncated,
	}, nil
}

func ensureInitialized() error {
	if initialized {
		return nil
	}
	if err := Initialize(DefaultOptions()); err != nil {
		return fmt.Errorf("failed to initialize BackBit API: %w", err)
	}
	return nil
}

// GetVersion returns the version written into new containers
func GetVersion() string {
	return bbt.Version
}

// Shutdown flushes the logs
func Shutdown() error {
	if initialized {
		logger.LogInfo("BackBit API shutting down", nil)
		logger.Sync()
	}
	return nil
}

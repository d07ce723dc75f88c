// Package config handles compiler configuration loading and management.
package config

// Config holds all compiler settings.
type Config struct {
	Compile CompileConfig `yaml:"compile"`
	Logging LoggingConfig `yaml:"logging"`
}

// CompileConfig holds the compilation pipeline settings.
type CompileConfig struct {
	SourceDir string `yaml:"source_dir"` // Directory scanned for .dae files
	OutputDir string `yaml:"output_dir"` // Directory receiving .mdl artifacts
	Workers   int    `yaml:"workers"`    // 0 = one worker per CPU
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Compile: CompileConfig{
			SourceDir: "models",
			OutputDir: "build/models",
			Workers:   0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

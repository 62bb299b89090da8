package config

// LoggingConfig is the logging section of imaginarium.yaml. Nothing is
// written unless debug_mode is set; categories missing from the map log.
type LoggingConfig struct {
	Level      string          `yaml:"level"`
	Format     string          `yaml:"format"`
	File       string          `yaml:"file"`
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
}

package config

// Config is the root configuration structure for blockfile.
type Config struct {
	LogLevel string        `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string        `yaml:"log_file" mapstructure:"log_file"`
	Storage  StorageConfig `yaml:"storage" mapstructure:"storage"`
	Indexer  IndexerConfig `yaml:"indexer" mapstructure:"indexer"`
	Search   SearchConfig  `yaml:"search" mapstructure:"search"`
	Capture  CaptureConfig `yaml:"capture" mapstructure:"capture"`
}

// StorageConfig holds the SQLite index database location.
type StorageConfig struct {
	// DatabasePath is the path to blockfile-index-v1.sqlite3. Supports ~
	// for home directory expansion.
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
}

// IndexerConfig holds index_root tuning knobs. Both fields are loaded,
// validated and written by config init, but the indexer does not read
// them.
type IndexerConfig struct {
	// ChunkSize is not applied: the parse-phase fan-out is always
	// clamp(2*NumCPU, 8, 64).
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size"`
	// ProgressIntervalMs is not applied: the progress emitter always uses
	// a fixed 120ms minimum gap.
	ProgressIntervalMs int `yaml:"progress_interval_ms" mapstructure:"progress_interval_ms"`
}

// SearchConfig holds search_index tuning knobs.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
}

// CaptureConfig holds the configured capture target. It is loaded and
// validated, but insert_capture does not read it: an empty target path
// always falls back to BlockFile-Captures.docx.
type CaptureConfig struct {
	DefaultTarget string `yaml:"default_target" mapstructure:"default_target"`
}

package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/blockfile/blockfile.log"

	DefaultDatabasePath = "~/.config/blockfile/blockfile-index-v1.sqlite3"

	DefaultIndexerChunkSize          = 0 // unused by the indexer, which always uses clamp(2*NumCPU, 8, 64)
	DefaultIndexerProgressIntervalMs = 120

	DefaultSearchLimit = 40

	DefaultCaptureTarget = "BlockFile-Captures.docx"
)

// NewDefaultConfig returns a Config populated with all default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Storage: StorageConfig{
			DatabasePath: DefaultDatabasePath,
		},
		Indexer: IndexerConfig{
			ChunkSize:          DefaultIndexerChunkSize,
			ProgressIntervalMs: DefaultIndexerProgressIntervalMs,
		},
		Search: SearchConfig{
			DefaultLimit: DefaultSearchLimit,
		},
		Capture: CaptureConfig{
			DefaultTarget: DefaultCaptureTarget,
		},
	}
}

// setDefaults registers all default configuration values with viper.
// Called during Init() before reading config files.
func setDefaults() {
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("log_file", DefaultLogFile)

	viper.SetDefault("storage.database_path", DefaultDatabasePath)

	viper.SetDefault("indexer.chunk_size", DefaultIndexerChunkSize)
	viper.SetDefault("indexer.progress_interval_ms", DefaultIndexerProgressIntervalMs)

	viper.SetDefault("search.default_limit", DefaultSearchLimit)

	viper.SetDefault("capture.default_target", DefaultCaptureTarget)
}

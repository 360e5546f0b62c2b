package config

const (
	defaultRequestTimeout      = 15
	defaultSparkVersion        = "2.4.0"
	defaultChunkSize           = 100_000
	defaultPollIntervalMillis  = 1000
	defaultTailIntervalMillis  = 250
	defaultQueueIntervalMillis = 3000
	defaultTailLines           = 10
	defaultCaptureDir          = "~/.cache/adstax-spark-job-manager/captures"
	defaultHistoryPath         = "~/.local/share/adstax-spark-job-manager/history.db"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Cluster: Cluster{
			RequestTimeout: defaultRequestTimeout,
			SparkVersion:   defaultSparkVersion,
		},
		Log: Log{
			ChunkSize:           defaultChunkSize,
			PollIntervalMillis:  defaultPollIntervalMillis,
			TailIntervalMillis:  defaultTailIntervalMillis,
			QueueIntervalMillis: defaultQueueIntervalMillis,
			TailLines:           defaultTailLines,
			CaptureDir:          defaultCaptureDir,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

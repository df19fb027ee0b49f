package config

const (
	defaultDataDir           = "~/.local/share/podqueue"
	defaultStorageDir        = "~/.local/share/podqueue/episodes"
	defaultLogDir            = "~/.local/share/podqueue/logs"
	defaultAPIBind           = "127.0.0.1:7488"
	defaultOutOfRange        = OutOfRangeClamp
	defaultLockTimeout       = 10
	defaultBusyTimeoutMillis = 5000
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Out-of-range policies accepted by queue.out_of_range.
const (
	OutOfRangeClamp  = "clamp"
	OutOfRangeReject = "reject"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StorageDir: defaultStorageDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Queue: Queue{
			OutOfRange:  defaultOutOfRange,
			LockTimeout: defaultLockTimeout,
		},
		Store: Store{
			BusyTimeoutMillis: defaultBusyTimeoutMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

// Default values for configuration.
const (
	DefaultConfigPath = "config.yml"

	// Bot defaults
	DefaultBotRequestTimeoutSeconds = 30
	DefaultBotPollTimeoutSeconds    = 25

	// Membership defaults
	DefaultMembershipCheckTimeoutSeconds = 10

	// Relay defaults
	DefaultImgBBEndpoint             = "https://api.imgbb.com/1/upload"
	DefaultRelayFetchTimeoutSeconds  = 20
	DefaultRelayUploadTimeoutSeconds = 30
	DefaultRelayMaxImageBytes        = 20 << 20

	// Broadcast defaults
	DefaultBroadcastPoolSize           = 3
	DefaultBroadcastSendTimeoutSeconds = 10

	// Storage defaults
	DefaultStorageDriver = StorageSQLite
	DefaultSQLitePath    = "data/bot_data.db"
	DefaultRedisPrefix   = "gateway"

	// Server defaults
	DefaultServerHost                   = "0.0.0.0"
	DefaultServerPort                   = 8080
	DefaultServerShutdownTimeoutSeconds = 15

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Asset defaults
	DefaultGateImageURL         = "https://i.ibb.co/Jjfq41fd/image.jpg"
	DefaultWelcomeImageURL      = "https://i.ibb.co/FLChhMvr/image.jpg"
	DefaultInstructionsImageURL = "https://via.placeholder.com/600x400?text=Upload+Instructions"
)

func defaultConfig() *Config {
	return &Config{
		Bot: Bot{
			RequestTimeoutSeconds: DefaultBotRequestTimeoutSeconds,
			PollTimeoutSeconds:    DefaultBotPollTimeoutSeconds,
		},
		Membership: Membership{
			CheckTimeoutSeconds: DefaultMembershipCheckTimeoutSeconds,
		},
		Relay: Relay{
			ImgBBEndpoint:        DefaultImgBBEndpoint,
			FetchTimeoutSeconds:  DefaultRelayFetchTimeoutSeconds,
			UploadTimeoutSeconds: DefaultRelayUploadTimeoutSeconds,
			MaxImageBytes:        DefaultRelayMaxImageBytes,
		},
		Broadcast: Broadcast{
			PoolSize:           DefaultBroadcastPoolSize,
			SendTimeoutSeconds: DefaultBroadcastSendTimeoutSeconds,
		},
		Storage: StorageConfig{
			Driver:      DefaultStorageDriver,
			SQLitePath:  DefaultSQLitePath,
			RedisPrefix: DefaultRedisPrefix,
		},
		Server: Server{
			Host:                   DefaultServerHost,
			Port:                   DefaultServerPort,
			ShutdownTimeoutSeconds: DefaultServerShutdownTimeoutSeconds,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Assets: Assets{
			GateImageURL:         DefaultGateImageURL,
			WelcomeImageURL:      DefaultWelcomeImageURL,
			InstructionsImageURL: DefaultInstructionsImageURL,
		},
	}
}

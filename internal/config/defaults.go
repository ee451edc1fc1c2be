package config

const (
	defaultConfigPath          = "~/.config/checklist/config.toml"
	defaultDataDir             = "~/.local/share/checklist"
	defaultLogDir              = "~/.local/share/checklist/logs"
	defaultAPIBind             = "127.0.0.1:7488"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
	defaultClientTimeoutSecond = 5
	apiTokenEnv                = "CHECKLIST_API_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Client: Client{
			TimeoutSeconds: defaultClientTimeoutSecond,
		},
	}
}

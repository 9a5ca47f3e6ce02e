package config

type Config struct {
	BindAddr    string `env:"VHTTP_BINDADDR,default=localhost:8095"`
	Host        string `env:"VHTTP_HOST"`
	DataDir     string `env:"VHTTP_DATA_DIR"`
	Manifest    string `env:"VHTTP_MANIFEST"`
	Demo        bool   `env:"VHTTP_DEMO,default=false"`
	ControlPath string `env:"VHTTP_CONTROL_PATH,default=/_control"`
	// semicolon separated Origin host patterns allowed on the control websocket
	ControlOrigins []string `env:"VHTTP_CONTROL_ORIGINS"`
	Log            LogConfig
}

type LogConfig struct {
	Level  string `env:"VHTTP_LOG_LEVEL,default=info"`
	Format string `env:"VHTTP_LOG_FORMAT,default=console"`
	File   string `env:"VHTTP_LOG_FILE"`
	// rotation settings only apply when File is set
	MaxSizeMB  int `env:"VHTTP_LOG_MAX_SIZE,default=10"`
	MaxBackups int `env:"VHTTP_LOG_MAX_BACKUPS,default=3"`
	MaxAgeDays int `env:"VHTTP_LOG_MAX_AGE,default=28"`
}

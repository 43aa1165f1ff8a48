package settings

// Config is the root configuration for the library's runtime components.
type Config struct {
	Logger Logger `mapstructure:"logger"`
	Queue  Queue  `mapstructure:"queue"`
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups" validate:"min=0"`
	MaxAge      int    `mapstructure:"max_age" validate:"min=0"`
	MaxSize     int    `mapstructure:"max_size" validate:"min=0"`
	Compress    bool   `mapstructure:"compress"`
}

// Queue is the configuration for block queues and their consumer pumps
type Queue struct {
	Capacity   int `mapstructure:"capacity" validate:"gt=0"`
	Workers    int `mapstructure:"workers" validate:"gt=0"`
	BatchSize  int `mapstructure:"batch_size" validate:"gt=0"`
	PopTimeout int `mapstructure:"pop_timeout" validate:"min=0"` // Milliseconds
}

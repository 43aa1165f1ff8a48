package settings

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// validate caches the compiled struct rules; a single instance is safe for
// concurrent use.
var validate = validator.New()

// Load reads configuration from the given YAML file, applies defaults and
// environment overrides (prefix BREUTIL, dots replaced with underscores,
// e.g. BREUTIL_QUEUE_CAPACITY), and validates the result.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("logger.log_level", "info")
	v.SetDefault("queue.capacity", 1024)
	v.SetDefault("queue.workers", 1)
	v.SetDefault("queue.batch_size", 64)
	v.SetDefault("queue.pop_timeout", 0)

	v.SetEnvPrefix("BREUTIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "settings: read config %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "settings: unmarshal config")
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, "settings: invalid config")
	}
	return &cfg, nil
}

package settings

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "GOCRUD"
	EnvConfigFile = "GOCRUD_CONFIG"
)

// Load reads configuration from file and env. Env var overrides use prefix GOCRUD_,
// e.g. GOCRUD_SERVER_PORT. An empty path falls back to $GOCRUD_CONFIG, then ./config.yaml.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.require_https", false)
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("logger.log_level", "info")
	v.SetDefault("logger.file_log_name", "log/go-crud.log")
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.max_size", 50)

	v.SetDefault("mongodb.host", "localhost")
	v.SetDefault("mongodb.port", 27017)
	v.SetDefault("mongodb.database", "gocrud")
	v.SetDefault("mongodb.timeout", 10)

	v.SetDefault("redis.addrs", []string{"localhost:6379"})
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.flush_frequency", 500)
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.timeout", 10)
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_interval", 1000)

	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)

	v.SetDefault("snowflake_node.worker_id", 1)

	v.SetDefault("crud.resources.products.variant", "full")
	v.SetDefault("crud.resources.products.backend", "memory")
	v.SetDefault("crud.resources.products.cache_ttl", 60)
	v.SetDefault("crud.resources.products.cache_store", "local")
	v.SetDefault("crud.resources.categories.variant", "base")
	v.SetDefault("crud.resources.categories.backend", "memory")
}

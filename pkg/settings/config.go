package settings

type Config struct {
	Server        Server        `mapstructure:"server"`
	MongoDB       MongoDB       `mapstructure:"mongodb"`
	Logger        Logger        `mapstructure:"logger"`
	Redis         Redis         `mapstructure:"redis"`
	Kafka         Kafka         `mapstructure:"kafka"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Database      Database      `mapstructure:"database"`
	SnowflakeNode SnowflakeNode `mapstructure:"snowflake_node"`
	Crud          Crud          `mapstructure:"crud"`
}

// Database is the configuration for the database
type Database struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// Server is the configuration for the server
type Server struct {
	Mode            string `mapstructure:"mode"` // debug | release | test
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	RequireHTTPS    bool   `mapstructure:"require_https"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // Seconds
}

// MongoDB is the configuration for MongoDB
type MongoDB struct {
	Host            string `mapstructure:"host"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxPoolSize     uint64 `mapstructure:"max_pool_size"`
	MinPoolSize     uint64 `mapstructure:"min_pool_size"`
	MaxConnIdleTime uint64 `mapstructure:"max_conn_idle_time"`
	Port            int    `mapstructure:"port"`
	Timeout         int    `mapstructure:"timeout"`
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxSize     int    `mapstructure:"max_size"`
}

// Redis is the configuration for Redis
type Redis struct {
	Addrs           []string `mapstructure:"addrs"`
	MasterName      string   `mapstructure:"master_name"`
	Password        string   `mapstructure:"password"`
	Database        int      `mapstructure:"database"`
	PoolSize        int      `mapstructure:"pool_size"`
	MinIdleConns    int      `mapstructure:"min_idle_conns"`
	PoolTimeout     int      `mapstructure:"pool_timeout"`
	DialTimeout     int      `mapstructure:"dial_timeout"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	MaxRetries      int      `mapstructure:"max_retries"`
	MaxRetryBackoff int      `mapstructure:"max_retry_backoff"`
	MinRetryBackoff int      `mapstructure:"min_retry_backoff"`
}

// Kafka is the configuration for Kafka
type Kafka struct {
	Brokers         []string `mapstructure:"brokers"`
	FlushFrequency  int      `mapstructure:"flush_frequency"`   // Milliseconds
	FlushBytes      int      `mapstructure:"flush_bytes"`       // Bytes
	MaxMessageBytes int      `mapstructure:"max_message_bytes"` // Bytes
	Timeout         int      `mapstructure:"timeout"`           // Seconds
	MaxRetries      int      `mapstructure:"max_retries"`       // Number of retries
	RetryBackoff    int      `mapstructure:"retry_backoff"`     // Milliseconds
	BatchSize       int      `mapstructure:"batch_size"`        // Change events per publish
	BatchInterval   int      `mapstructure:"batch_interval"`    // Milliseconds
}

// Elasticsearch is the configuration for Elasticsearch
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type Snowflake struct {
	Epoch     int64 `mapstructure:"epoch"`
	Node      uint8 `mapstructure:"node"`
	Step      uint8 `mapstructure:"step"`
	TotalBits uint8 `mapstructure:"total_bits"`
}

type SnowflakeNode struct {
	Config   Snowflake `mapstructure:"config"`
	WorkerID int64     `mapstructure:"worker_id"`
}

// Crud configures the served resources, keyed by resource name.
type Crud struct {
	Resources map[string]Resource `mapstructure:"resources"`
}

// Resource selects how one resource is stored and which actions it serves.
type Resource struct {
	Variant    string          `mapstructure:"variant"` // base | full
	Backend    string          `mapstructure:"backend"` // memory | mongodb | elasticsearch | ent
	Cache      bool            `mapstructure:"cache"`
	CacheStore string          `mapstructure:"cache_store"` // local | redis
	CacheTTL   int             `mapstructure:"cache_ttl"`   // Seconds
	CacheBytes int64           `mapstructure:"cache_bytes"` // Local store bound, 0 takes the default
	ChangeFeed string          `mapstructure:"change_feed"` // Kafka topic, empty disables
	Toggles    map[string]bool `mapstructure:"toggles"`     // action name -> enabled
}

// Resource returns the named resource configuration, or the zero value.
func (c Crud) Resource(name string) Resource {
	return c.Resources[name]
}

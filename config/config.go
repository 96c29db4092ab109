package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultPath = "config/config.yml"

type AppConfig struct {
	ServerName     string          `mapstructure:"server_name" yaml:"server_name"`
	Version        string          `mapstructure:"version" yaml:"version"`
	Environment    string          `mapstructure:"environment" yaml:"environment"`
	Port           int             `mapstructure:"port" yaml:"port"`
	TrustedProxies []string        `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`
	CORS           CORSConfig      `mapstructure:"cors" yaml:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Redis          RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Postgres       PostgresConfig  `mapstructure:"postgres" yaml:"postgres"`
	Consul         ConsulConfig    `mapstructure:"consul" yaml:"consul"`
	RocketMQ       RocketMQConfig  `mapstructure:"rocketmq" yaml:"rocketmq"`
	LLM            LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Mail           MailConfig      `mapstructure:"mail" yaml:"mail"`
	Log            LogConfig       `mapstructure:"log" yaml:"log"`
}

type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	MaxAge         time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

type RateLimitConfig struct {
	// memory | redis
	Backend       string        `mapstructure:"backend" yaml:"backend"`
	Window        time.Duration `mapstructure:"window" yaml:"window"`
	Max           int           `mapstructure:"max" yaml:"max"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

type RedisConfig struct {
	Address      string        `mapstructure:"address" yaml:"address"`
	Port         int           `mapstructure:"port" yaml:"port"`
	Password     string        `mapstructure:"password" yaml:"password"`
	Database     int           `mapstructure:"database" yaml:"database"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries" yaml:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
}

type PostgresConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Address  string        `mapstructure:"address" yaml:"address"`
	Port     int           `mapstructure:"port" yaml:"port"`
	User     string        `mapstructure:"user" yaml:"user"`
	Password string        `mapstructure:"password" yaml:"password"`
	DBName   string        `mapstructure:"db_name" yaml:"db_name"`
	SSLMode  string        `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxIdle  int           `mapstructure:"max_idle" yaml:"max_idle"`
	MaxOpen  int           `mapstructure:"max_open" yaml:"max_open"`
	MaxLife  time.Duration `mapstructure:"max_life" yaml:"max_life"`
}

type ConsulConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Address    string `mapstructure:"address" yaml:"address"`
	Scheme     string `mapstructure:"scheme" yaml:"scheme"`
	Datacenter string `mapstructure:"datacenter" yaml:"datacenter"`
}

type RocketMQConfig struct {
	Enabled     bool     `mapstructure:"enabled" yaml:"enabled"`
	NameServers []string `mapstructure:"name_servers" yaml:"name_servers"`
	MaxRetries  int      `mapstructure:"max_retries" yaml:"max_retries"`
	GroupName   string   `mapstructure:"group_name" yaml:"group_name"`
	Topics      struct {
		UserEvent string `mapstructure:"user_event" yaml:"user_event"`
	} `mapstructure:"topics" yaml:"topics"`
}

type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	Model       string        `mapstructure:"model" yaml:"model"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PersonaFile string        `mapstructure:"persona_file" yaml:"persona_file"`
}

type MailConfig struct {
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"`
	From     string        `mapstructure:"from" yaml:"from"`
	NotifyTo string        `mapstructure:"notify_to" yaml:"notify_to"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type LogConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	Format    string `mapstructure:"format" yaml:"format"`
	Director  string `mapstructure:"director" yaml:"director"`
	LogInFile bool   `mapstructure:"log_in_file" yaml:"log_in_file"`
	MaxSize   int    `mapstructure:"max_size" yaml:"max_size"`
	MaxAge    int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackup int    `mapstructure:"max_backup" yaml:"max_backup"`
	Compress  bool   `mapstructure:"compress" yaml:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_name", "ask-mark")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("port", 3001)
	v.SetDefault("trusted_proxies", []string{"127.0.0.1/32"})
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "https://braveandboundless.com"})
	v.SetDefault("cors.max_age", 12*time.Hour)

	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.window", 60*time.Second)
	v.SetDefault("rate_limit.max", 10)
	v.SetDefault("rate_limit.sweep_interval", 0)

	v.SetDefault("redis.address", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("postgres.address", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.ssl_mode", "disable")

	v.SetDefault("consul.address", "localhost:8500")
	v.SetDefault("consul.scheme", "http")
	v.SetDefault("consul.datacenter", "dc1")

	v.SetDefault("rocketmq.max_retries", 2)
	v.SetDefault("rocketmq.group_name", "ask-mark")
	v.SetDefault("rocketmq.topics.user_event", "user_event")

	v.SetDefault("llm.base_url", "https://api.anthropic.com")
	v.SetDefault("llm.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("mail.base_url", "https://api.resend.com")
	v.SetDefault("mail.timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.director", "log")
}

// LoadConfig reads .env (if present), then path (if present), then environment overrides.
// Nested keys map to env vars with "." replaced by "_", e.g. LLM_API_KEY.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AutomaticEnv only sees keys viper already knows; secrets have no default so bind them.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{"llm.api_key", "mail.api_key", "mail.from", "mail.notify_to", "redis.password", "postgres.user", "postgres.password", "postgres.db_name", "postgres.enabled", "consul.enabled", "rocketmq.enabled", "rocketmq.name_servers", "llm.persona_file"} {
		_ = v.BindEnv(key)
	}
	// Plain PORT and ALLOWED_ORIGINS are what most hosts set.
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("cors.allowed_origins", "ALLOWED_ORIGINS")
}

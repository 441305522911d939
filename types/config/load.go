package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type fileConfig struct {
	ServerURL            string            `mapstructure:"server_url"`
	APIKey               string            `mapstructure:"api_key"`
	Instance             string            `mapstructure:"instance"`
	RequestTimeout       time.Duration     `mapstructure:"request_timeout"`
	PollInterval         time.Duration     `mapstructure:"poll_interval"`
	ReleaseURL           string            `mapstructure:"release_url"`
	Storage              string            `mapstructure:"storage"`
	MigrationConcurrency int               `mapstructure:"migration_concurrency"`
	Schedules            map[string]string `mapstructure:"schedules"`
	RedisChannel         string            `mapstructure:"redis_channel"`

	Postgres struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"postgres"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	RabbitMQ struct {
		URL        string `mapstructure:"url"`
		Exchange   string `mapstructure:"exchange"`
		Queue      string `mapstructure:"queue"`
		RoutingKey string `mapstructure:"routing_key"`
	} `mapstructure:"rabbitmq"`

	Dashboard struct {
		Port      uint   `mapstructure:"port"`
		Username  string `mapstructure:"username"`
		Password  string `mapstructure:"password"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"dashboard"`

	Log struct {
		Level       string   `mapstructure:"level"`
		Format      string   `mapstructure:"format"`
		Outputs     []string `mapstructure:"outputs"`
		Development bool     `mapstructure:"development"`
		Rotation    struct {
			Enable     bool   `mapstructure:"enable"`
			Filename   string `mapstructure:"filename"`
			MaxSizeMB  int    `mapstructure:"max_size_mb"`
			MaxBackups int    `mapstructure:"max_backups"`
			MaxAgeDays int    `mapstructure:"max_age_days"`
			Compress   bool   `mapstructure:"compress"`
		} `mapstructure:"rotation"`
	} `mapstructure:"log"`
}

// Load reads configuration from the provided path (if non-empty), otherwise it
// searches ./lrrctl.yaml and $HOME/.config/lrrctl/lrrctl.yaml. Environment variables
// use the prefix LRRCTL and `.`/`-` are replaced with `_`.
// Example: LRRCTL_SERVER_URL=http://localhost:3000
func Load(path string) (*ConsoleConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LRRCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults so env-only configs work
	v.SetDefault("server_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("instance", "lrrctl")
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("release_url", DefaultReleaseURL)
	v.SetDefault("storage", "")
	v.SetDefault("migration_concurrency", DefaultMigrationConcurrency)
	v.SetDefault("redis_channel", "")
	v.SetDefault("postgres.url", "")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "lrrctl")
	v.SetDefault("rabbitmq.queue", "lrrctl_toasts")
	v.SetDefault("rabbitmq.routing_key", "toasts")
	v.SetDefault("dashboard.port", DefaultDashboardPort)
	v.SetDefault("dashboard.username", "")
	v.SetDefault("dashboard.password", "")
	v.SetDefault("dashboard.secret_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.outputs", []string{"stderr"})
	v.SetDefault("log.development", false)
	v.SetDefault("log.rotation.enable", false)
	v.SetDefault("log.rotation.filename", "logs/lrrctl.log")
	v.SetDefault("log.rotation.max_size_mb", 50)
	v.SetDefault("log.rotation.max_backups", 3)
	v.SetDefault("log.rotation.max_age_days", 28)
	v.SetDefault("log.rotation.compress", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("lrrctl")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lrrctl")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, err
	}
	return fc.build()
}

func (fc fileConfig) build() (*ConsoleConfig, error) {
	opts := []ConsoleOption{
		WithAPIKey(fc.APIKey),
		WithInstance(fc.Instance),
		WithRequestTimeout(fc.RequestTimeout),
		WithPollInterval(fc.PollInterval),
		WithReleaseURL(fc.ReleaseURL),
		WithMigrationConcurrency(fc.MigrationConcurrency),
		WithDashboardPort(fc.Dashboard.Port),
		WithLogConfig(LogConfig{
			Level:       fc.Log.Level,
			Format:      fc.Log.Format,
			Outputs:     fc.Log.Outputs,
			Development: fc.Log.Development,
			Rotation: RotationConfig{
				Enable:     fc.Log.Rotation.Enable,
				Filename:   fc.Log.Rotation.Filename,
				MaxSizeMB:  fc.Log.Rotation.MaxSizeMB,
				MaxBackups: fc.Log.Rotation.MaxBackups,
				MaxAgeDays: fc.Log.Rotation.MaxAgeDays,
				Compress:   fc.Log.Rotation.Compress,
			},
		}),
	}

	if fc.Postgres.URL != "" {
		opts = append(opts, WithPostgresConfig(PostgresConfig{ConnectionUrl: fc.Postgres.URL}))
	}
	if fc.Redis.Address != "" {
		opts = append(opts, WithRedisConfig(RedisConfig{
			Address:  fc.Redis.Address,
			Password: fc.Redis.Password,
			DB:       fc.Redis.DB,
		}))
	}
	// applied after the connection options so an explicit driver wins
	if fc.Storage != "" {
		driver, err := ParseStorageDriver(fc.Storage)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithStorageDriver(driver))
	}

	if fc.RedisChannel != "" {
		opts = append(opts, WithRedisNotifier(fc.RedisChannel))
	}
	if fc.RabbitMQ.URL != "" {
		opts = append(opts, WithRabbitMQConfig(RabbitMQConfig{
			URL:         fc.RabbitMQ.URL,
			Exchange:    fc.RabbitMQ.Exchange,
			Queue:       fc.RabbitMQ.Queue,
			RoutingKey:  fc.RabbitMQ.RoutingKey,
			ContentType: "application/json",
		}))
	}
	if fc.Dashboard.Username != "" || fc.Dashboard.Password != "" {
		opts = append(opts, WithAdminDashboardConfig(fc.Dashboard.Username, fc.Dashboard.Password, fc.Dashboard.SecretKey, fc.Dashboard.Port))
	}
	for action, spec := range fc.Schedules {
		opts = append(opts, WithSchedule(action, spec))
	}

	return NewConsoleConfig(fc.ServerURL, opts...)
}

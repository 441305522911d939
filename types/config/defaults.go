package config

import "time"

const (
	DefaultPollInterval         = time.Second
	DefaultRequestTimeout       = 30 * time.Second
	DefaultStorageDriver        = Memory
	DefaultMigrationConcurrency = 4
	DefaultDashboardPort        = 8090
	DefaultRedisChannel         = "lrrctl:toasts"
	DefaultReleaseURL           = "https://api.github.com/repos/difegue/lanraragi/releases/latest"
)

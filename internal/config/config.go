package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeoutSeconds bounds how long a graceful shutdown waits for
	// in-flight requests before forcing the server down.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// GenerationConfig contains the schedule generation job settings.
type GenerationConfig struct {
	// WindowDays is how far ahead schedules are expanded, inclusive of the
	// run day.
	WindowDays int `mapstructure:"window_days" validate:"required,gte=1,lte=90"`

	// HorizonDays is how far ahead reminder records are eagerly created.
	// Doses beyond the horizon get adherence records only.
	HorizonDays int `mapstructure:"horizon_days" validate:"gte=0,lte=90"`

	// Cron is the schedule of the periodic generation run,
	// in standard five-field cron syntax.
	Cron string `mapstructure:"cron" validate:"required"`

	// SweepCron is the schedule of the missed-dose sweep.
	SweepCron string `mapstructure:"sweep_cron" validate:"required"`

	// SweepGraceHours is how long after its scheduled day a pending dose may
	// linger before the sweep marks it missed.
	SweepGraceHours int `mapstructure:"sweep_grace_hours" validate:"gte=0,lte=168"`
}

// DispatchConfig contains the reminder dispatch scanner settings.
type DispatchConfig struct {
	// IntervalSeconds is the fixed polling cadence of the scanner. It also
	// sets the effective retry backoff, since a still-pending reminder is
	// re-attempted on the next pass.
	IntervalSeconds int `mapstructure:"interval_seconds" validate:"required,gte=1,lte=3600"`

	// MaxAttempts is the number of failed delivery attempts after which a
	// reminder transitions to the terminal failed state.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gte=1,lte=10"`

	// WorkerCount bounds how many due reminders one pass processes concurrently.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gte=1,lte=64"`

	// BatchSize caps how many due reminders a single pass loads. Zero means
	// no cap.
	BatchSize int `mapstructure:"batch_size" validate:"gte=0"`
}

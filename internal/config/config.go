package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	Database    Database    `envPrefix:"DB_"`
	SMTP        SMTP        `envPrefix:"EMAIL_"`
	AuthBackend AuthBackend `envPrefix:"SUPABASE_"`
	Redis       Redis       `envPrefix:"REDIS_"`
	Reset       Reset       `envPrefix:"RESET_"`
	Notify      Notify      `envPrefix:"NOTIFY_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"3001"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite | mysql
	URL    string `env:"URL" envDefault:"furnit.db"`
}

type SMTP struct {
	Host     string        `env:"HOST" envDefault:"localhost"`
	Port     int           `env:"PORT" envDefault:"587"`
	User     string        `env:"USER"`
	Password string        `env:"PASSWORD"`
	From     string        `env:"FROM" envDefault:"Furnit <no-reply@furnit.com>"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"8s"`
}

type AuthBackend struct {
	URL            string        `env:"URL"`
	ServiceRoleKey string        `env:"SERVICE_ROLE_KEY"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// Redis is optional: with an empty Addr the token store and carts stay in process memory.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Reset struct {
	AssertionSecret string `env:"ASSERTION_SECRET"`
	// DiscloseUnknownAccount keeps the storefront's historical 404 for unknown emails.
	// Set to false to answer unknown accounts with the same generic success as lookup failures.
	DiscloseUnknownAccount bool    `env:"DISCLOSE_UNKNOWN_ACCOUNT" envDefault:"true"`
	RateLimit              float64 `env:"RATE_LIMIT" envDefault:"5"`
}

type Notify struct {
	Mode         string        `env:"MODE" envDefault:"direct"` // direct | outbox
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	RetryDelay   time.Duration `env:"RETRY_DELAY" envDefault:"10s"`
	SendTimeout  time.Duration `env:"SEND_TIMEOUT" envDefault:"8s"`
}

func (c *Config) Addr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

package config

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	// Url is a postgres DSN, or "sqlite:<path>" / "file:<path>" for a local
	// SQLite database.
	Url string `envconfig:"URL"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
	// AdminEmails get the admin role at registration.
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`
}

type Redis struct {
	URL          string        `envconfig:"URL"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"fintechflow:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type EventBus struct {
	Driver       string `envconfig:"DRIVER" default:"memory"`
	Stream       string `envconfig:"STREAM" default:"fintechflow.events"`
	Group        string `envconfig:"GROUP" default:"fintechflow"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"fintechflow.events"`
}

type Ledger struct {
	PageSize     int    `envconfig:"PAGE_SIZE" default:"100"`
	MerchantCity string `envconfig:"MERCHANT_CITY" default:"SAO PAULO"`
}

type Card struct {
	DefaultDailyLimit   decimal.Decimal `envconfig:"DEFAULT_DAILY_LIMIT" default:"5000.00"`
	DefaultMonthlyLimit decimal.Decimal `envconfig:"DEFAULT_MONTHLY_LIMIT" default:"50000.00"`
	MaxPerUser          int             `envconfig:"MAX_PER_USER" default:"10"`
	BIN                 string          `envconfig:"BIN" default:"498765"`
	CVVSecret           string          `envconfig:"CVV_SECRET" default:"change-me"`
}

type Idempotency struct {
	TTL time.Duration `envconfig:"TTL" default:"24h"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[fintechflow]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env         string       `envconfig:"APP_ENV" default:"development"`
	Server      *Server      `envconfig:"SERVER"`
	Log         *Log         `envconfig:"LOG"`
	DB          *DB          `envconfig:"DATABASE"`
	Auth        *Auth        `envconfig:"AUTH"`
	RateLimit   *RateLimit   `envconfig:"RATE_LIMIT"`
	Redis       *Redis       `envconfig:"REDIS"`
	EventBus    *EventBus    `envconfig:"EVENT_BUS"`
	Ledger      *Ledger      `envconfig:"LEDGER"`
	Card        *Card        `envconfig:"CARD"`
	Idempotency *Idempotency `envconfig:"IDEMPOTENCY"`
}

// IsAdminEmail reports whether email is listed in AUTH_ADMIN_EMAILS.
func (a *Auth) IsAdminEmail(email string) bool {
	for _, e := range a.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name         string `koanf:"name"`
		HTTPAddr     string `koanf:"http_addr"`
		LogLevel     string `koanf:"log_level"`
		LogFile      string `koanf:"log_file"`
		SecureCookie bool   `koanf:"secure_cookie"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Backend struct {
		BaseURL      string        `koanf:"base_url"`
		Timeout      time.Duration `koanf:"timeout"`
		ServiceToken string        `koanf:"service_token"`
	} `koanf:"backend"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
		Migrate         bool          `koanf:"migrate"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Cart struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cart"`

	Checkout struct {
		ServiceFee            string        `koanf:"service_fee"`
		LockTTL               time.Duration `koanf:"lock_ttl"`
		StockCheckConcurrency int           `koanf:"stock_check_concurrency"`
	} `koanf:"checkout"`

	Payment struct {
		SimulateWithoutURL bool          `koanf:"simulate_without_url"`
		SimulateDelay      time.Duration `koanf:"simulate_delay"`
	} `koanf:"payment"`

	Cache struct {
		StatusTTL time.Duration `koanf:"status_ttl"`
	} `koanf:"cache"`

	Rabbit struct {
		URL            string        `koanf:"url"`
		Exchange       string        `koanf:"exchange"`
		RoutingKey     string        `koanf:"routing_key"`
		SessionQueue   string        `koanf:"session_queue"`
		SessionKey     string        `koanf:"session_routing_key"`
		Prefetch       int           `koanf:"prefetch"`
		RelayInterval  time.Duration `koanf:"relay_interval"`
		RelayBatchSize int           `koanf:"relay_batch_size"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		GroupID     string   `koanf:"group_id"`
		TopicStatus string   `koanf:"topic_status"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
		Clients   []StaffClient `koanf:"clients"`
	} `koanf:"security"`

	RateLimit struct {
		RPS   float64 `koanf:"rps"`
		Burst int     `koanf:"burst"`
	} `koanf:"ratelimit"`
}

// StaffClient is a kitchen display or dashboard allowed to request staff
// tokens.
type StaffClient struct {
	ID     string   `koanf:"id"`
	Secret string   `koanf:"secret"`
	Perms  []string `koanf:"perms"`
}

func Load(pathDir, envName string) (Config, error) {
	// optional .env for local runs; real env vars win
	_ = godotenv.Load()

	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix TABLEORDER_, nested with __)
	// e.g. TABLEORDER_MYSQL__DSN, TABLEORDER_REDIS__PASSWORD
	if err := k.Load(env.Provider("TABLEORDER_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "TABLEORDER_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required")
	}
	if _, err := c.ServiceFee(); err != nil {
		return err
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	// stock check, create and process each get up to one backend timeout,
	// and all of it has to fit in the checkout lock
	if c.Checkout.LockTTL > 0 && c.Checkout.LockTTL*4/5 < 3*c.Backend.Timeout {
		return fmt.Errorf("checkout.lock_ttl %s too short for backend.timeout %s", c.Checkout.LockTTL, c.Backend.Timeout)
	}
	return nil
}

// ServiceFee is the single source of the fee used by cart preview and
// order submission.
func (c Config) ServiceFee() (decimal.Decimal, error) {
	if c.Checkout.ServiceFee == "" {
		return decimal.Zero, nil
	}
	fee, err := decimal.NewFromString(c.Checkout.ServiceFee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("checkout.service_fee: %w", err)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("checkout.service_fee must not be negative")
	}
	return fee, nil
}

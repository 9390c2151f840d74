package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pion/webrtc/v4"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:3000"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// AdminJWTSecret - подпись токенов для /api/rooms/cleanup. Пустое значение отключает проверку.
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`

	Eviction  EvictionConfig
	WebSocket WebSocketConfig
	Turn      TurnConfig
	Journal   JournalConfig
}

// EvictionConfig - сроки жизни комнат
type EvictionConfig struct {
	SweepInterval     time.Duration `env:"EVICTION_SWEEP_INTERVAL" envDefault:"1m"`
	MaxAge            time.Duration `env:"ROOM_MAX_AGE" envDefault:"2h"`
	InactivityTimeout time.Duration `env:"ROOM_INACTIVITY_TIMEOUT" envDefault:"30m"`
	EmptyGrace        time.Duration `env:"ROOM_EMPTY_GRACE" envDefault:"5m"`
	LeaveGrace        time.Duration `env:"ROOM_LEAVE_GRACE" envDefault:"30s"`
}

type WebSocketConfig struct {
	PongWait       time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`
	WriteWait      time.Duration `env:"WS_WRITE_WAIT" envDefault:"10s"`
	MaxMessageSize int64         `env:"WS_MAX_MESSAGE_SIZE" envDefault:"65536"`
	SendBuffer     int           `env:"WS_SEND_BUFFER" envDefault:"64"`
}

// PingPeriod должен быть меньше PongWait
func (w WebSocketConfig) PingPeriod() time.Duration {
	return w.PongWait * 9 / 10
}

type TurnConfig struct {
	STUNURL  string `env:"STUN_SERVER_URL" envDefault:"stun:stun.l.google.com:19302"`
	URL      string `env:"TURN_SERVER_URL"`
	Username string `env:"TURN_SERVER_USERNAME"`
	Password string `env:"TURN_SERVER_PASSWORD"`

	// Secret - static-auth-secret coturn. Если задан, /api/ice выдаёт временные учётные данные вместо Username/Password.
	Secret        string        `env:"TURN_STATIC_AUTH_SECRET"`
	CredentialTTL time.Duration `env:"TURN_CREDENTIAL_TTL" envDefault:"1h"`
}

type JournalConfig struct {
	Enabled bool `env:"JOURNAL_ENABLED" envDefault:"false"`

	Postgres PostgresConfig
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"roomrelay"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

func New() (*Config, error) {
	// .env не обязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err = c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) validate() error {
	e := c.Eviction
	if e.SweepInterval <= 0 {
		return fmt.Errorf("EVICTION_SWEEP_INTERVAL must be positive, got %s", e.SweepInterval)
	}

	if e.MaxAge <= 0 || e.InactivityTimeout <= 0 || e.EmptyGrace <= 0 || e.LeaveGrace <= 0 {
		return fmt.Errorf("room lifetime durations must be positive")
	}

	ws := c.WebSocket
	if ws.PongWait <= 0 || ws.WriteWait <= 0 {
		return fmt.Errorf("WS_PONG_WAIT and WS_WRITE_WAIT must be positive, got %s and %s", ws.PongWait, ws.WriteWait)
	}

	// PingPeriod = 0.9 * PongWait, тикер writePump не принимает ноль
	if ws.PingPeriod() <= 0 {
		return fmt.Errorf("WS_PONG_WAIT %s is too small for a ping period", ws.PongWait)
	}

	if ws.MaxMessageSize <= 0 {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be positive, got %d", ws.MaxMessageSize)
	}

	if ws.SendBuffer <= 0 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", ws.SendBuffer)
	}

	return nil
}

// ICEServers - STUN и, если задан, TURN сервер для клиентов
func (c *Config) ICEServers() []webrtc.ICEServer {
	t := c.Turn
	servers := make([]webrtc.ICEServer, 0, 2)

	if t.STUNURL != "" {
		servers = append(servers, webrtc.ICEServer{URLs: []string{t.STUNURL}})
	}

	if t.URL != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs:       []string{t.URL},
			Username:   t.Username,
			Credential: t.Password,
		})
	}

	return servers
}

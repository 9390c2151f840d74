package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := New()
	req.NoError(err)

	req.Equal("3000", cfg.Port)
	req.Equal(time.Minute, cfg.Eviction.SweepInterval)
	req.Equal(2*time.Hour, cfg.Eviction.MaxAge)
	req.Equal(30*time.Minute, cfg.Eviction.InactivityTimeout)
	req.Equal(5*time.Minute, cfg.Eviction.EmptyGrace)
	req.Equal(30*time.Second, cfg.Eviction.LeaveGrace)
	req.False(cfg.Journal.Enabled)

	// Only the STUN server without TURN settings
	req.Len(cfg.ICEServers(), 1)
	req.Equal([]string{"stun:stun.l.google.com:19302"}, cfg.ICEServers()[0].URLs)
}

func TestNew_TurnServer(t *testing.T) {
	req := require.New(t)
	t.Setenv("TURN_SERVER_URL", "turn:turn.example.com:3478")
	t.Setenv("TURN_SERVER_USERNAME", "alice")
	t.Setenv("TURN_SERVER_PASSWORD", "secret")

	cfg, err := New()
	req.NoError(err)

	req.Len(cfg.ICEServers(), 2)
	req.Equal("alice", cfg.ICEServers()[1].Username)
	req.Equal("secret", cfg.ICEServers()[1].Credential)
}

func TestNew_RejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("ROOM_LEAVE_GRACE", "0s")

	_, err := New()
	require.Error(t, err)
}

func TestNew_RejectsInvalidWebSocketLimits(t *testing.T) {
	cases := map[string]string{
		"WS_PONG_WAIT":        "0s",
		"WS_WRITE_WAIT":       "-1s",
		"WS_MAX_MESSAGE_SIZE": "0",
		"WS_SEND_BUFFER":      "0",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := New()
			require.ErrorContains(t, err, key)
		})
	}

	t.Run("pong wait below ping resolution", func(t *testing.T) {
		t.Setenv("WS_PONG_WAIT", "1ns")

		_, err := New()
		require.ErrorContains(t, err, "WS_PONG_WAIT")
	})
}

func TestWebSocketConfig_PingPeriod(t *testing.T) {
	w := WebSocketConfig{PongWait: 60 * time.Second}
	require.Equal(t, 54*time.Second, w.PingPeriod())
}

func TestPostgresConfig_DSN(t *testing.T) {
	req := require.New(t)

	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "rooms", SSL: "disable"}
	req.Equal("postgresql://u:p@db:5432/rooms?sslmode=disable", p.DSN())

	p.URL = "postgres://override"
	req.Equal("postgres://override", p.DSN())
}

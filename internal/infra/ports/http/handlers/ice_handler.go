package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pion/webrtc/v4"

	"github.com/qrave1/RoomRelay/internal/application/config"
)

type IceHandler struct {
	cfg   *config.Config
	clock clockwork.Clock
}

func NewIceHandler(cfg *config.Config, clk clockwork.Clock) *IceHandler {
	return &IceHandler{cfg: cfg, clock: clk}
}

type iceServersResponse struct {
	Success    bool               `json:"success"`
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

// IceServers выдаёт STUN/TURN сервера для RTCPeerConnection
func (h *IceHandler) IceServers(c echo.Context) error {
	servers := h.cfg.ICEServers()

	turn := h.cfg.Turn
	if turn.Secret != "" && turn.URL != "" {
		username, credential := turnCredentials(turn.Secret, h.clock.Now().Add(turn.CredentialTTL))

		for i := range servers {
			if len(servers[i].URLs) > 0 && servers[i].URLs[0] == turn.URL {
				servers[i].Username = username
				servers[i].Credential = credential
			}
		}
	}

	return c.JSON(http.StatusOK, iceServersResponse{Success: true, ICEServers: servers})
}

// turnCredentials - временные учётные данные coturn (use-auth-secret): username = срок годности, пароль = HMAC-SHA1
func turnCredentials(secret string, expiresAt time.Time) (string, string) {
	username := strconv.FormatInt(expiresAt.Unix(), 10)

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(username))

	return username, base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/port"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// ConnectivityController is implemented by connectivity.Monitor.
type ConnectivityController interface {
	IsOffline() bool
	Set(offline bool)
	Subscribe(fn func(offline bool)) (unsubscribe func())
}

type ConnectivityHandler struct {
	connectivity   ConnectivityController
	originPatterns []string
}

func NewConnectivityHandler(connectivity ConnectivityController, originPatterns []string) *ConnectivityHandler {
	return &ConnectivityHandler{connectivity: connectivity, originPatterns: originPatterns}
}

// GetState handles GET /api/v1/connectivity
func (h *ConnectivityHandler) GetState(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, connectivityState{Offline: h.connectivity.IsOffline()})
}

// SetState handles PUT /api/v1/connectivity, the manual transition signal.
func (h *ConnectivityHandler) SetState(w http.ResponseWriter, r *http.Request) {
	var req connectivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Offline == nil {
		WriteJSONError(w, http.StatusBadRequest, `Body must be {"offline": bool}`)
		return
	}
	h.connectivity.Set(*req.Offline)
	contextkeys.LoggerFromContext(r.Context()).Info("Connectivity set by request", port.Fields{
		"handler": "SetConnectivity",
		"offline": *req.Offline,
	})
	RespondWithJSON(w, http.StatusOK, connectivityState{Offline: h.connectivity.IsOffline()})
}

// Stream handles GET /api/v1/connectivity/ws: current state on connect, then every transition.
func (h *ConnectivityHandler) Stream(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ConnectivityStream"})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		logger.Warn("WebSocket upgrade failed", port.Fields{"error": err.Error()})
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	// Clients only listen; CloseRead handles their control frames and cancels ctx when they leave.
	ctx := conn.CloseRead(r.Context())

	updates := make(chan bool, 8)
	unsubscribe := h.connectivity.Subscribe(func(offline bool) {
		select {
		case updates <- offline:
		default:
			// slow client: it will get the next state
		}
	})
	defer unsubscribe()

	if err := writeState(ctx, conn, h.connectivity.IsOffline()); err != nil {
		logger.Debug("Initial state not delivered", port.Fields{"error": err.Error()})
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case offline := <-updates:
			if err := writeState(ctx, conn, offline); err != nil {
				logger.Debug("Client gone", port.Fields{"error": err.Error()})
				return
			}
		}
	}
}

func writeState(ctx context.Context, conn *websocket.Conn, offline bool) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, connectivityState{Offline: offline})
}

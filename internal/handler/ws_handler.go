package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-builder/internal/form"
	"github.com/stemsi/marksheet-builder/internal/model"
	"github.com/stemsi/marksheet-builder/internal/response"
	"github.com/stemsi/marksheet-builder/internal/service"
	ws "github.com/stemsi/marksheet-builder/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams submission status of a draft over WebSocket.
type WSHandler struct {
	store       *form.Store
	submissions *service.SubmissionService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(store *form.Store, submissions *service.SubmissionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		store:       store,
		submissions: submissions,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// FormStatusStream godoc
// WS /ws/v1/forms/:id/status
// Sends the current busy state, then every busy/progress/idle event of the
// draft until the client goes away. Clients may send {"action":"ping"}.
func (h *WSHandler) FormStatusStream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if _, err := h.store.Get(id); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("form_id", id.String()).Logger()
	wsLog.Debug().Msg("Status client connected")

	// Subscribe before reading the flag so no transition is missed.
	events, cancel := h.submissions.Subscribe(id)
	defer cancel()

	initial := model.StatusEvent{Event: model.StatusIdle, FormID: id.String()}
	if h.submissions.IsBusy(id) {
		initial.Event = model.StatusBusy
		initial.Busy = true
	}
	if err := ws.WriteTyped(conn, initial); err != nil {
		return
	}

	// gorilla allows one writer at a time, so the reader hands its replies
	// to the write loop instead of writing them itself.
	replies := make(chan interface{}, 1)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}

			var reply interface{}
			switch msg.Action {
			case ws.ActionPing:
				reply = ws.PongResponse{Event: ws.EventPong}
			default:
				wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
				reply = ws.NewErrorResponse("unknown action: " + string(msg.Action))
			}
			select {
			case replies <- reply:
			default:
			}
		}
	}()

	for {
		select {
		case <-closed:
			wsLog.Debug().Msg("Status client disconnected")
			return
		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ev); err != nil {
				wsLog.Debug().Err(err).Msg("Status write failed")
				return
			}
		}
	}
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"dealroom/pkg/metrics"
	"dealroom/pkg/util"
)

const (
	ControlJoin  = "project:join"
	ControlLeave = "project:leave"
	ControlError = "error"
	ControlReady = "ready"

	writeTimeout = 5 * time.Second
	clientBuffer = 64
)

// ControlMessage is what clients send: {"event": "project:join", "data": "<project id>"}.
type ControlMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Authorizer interface {
	Authorize(ctx context.Context, userID, role, projectID string) error
}

// WSServer upgrades authenticated requests and lets clients join project rooms.
type WSServer struct {
	hub            *Hub
	authz          Authorizer
	jwtSecret      string
	originPatterns []string
	logger         *zap.Logger
}

func NewWSServer(hub *Hub, authz Authorizer, jwtSecret string, originPatterns []string, logger *zap.Logger) *WSServer {
	return &WSServer{
		hub:            hub,
		authz:          authz,
		jwtSecret:      jwtSecret,
		originPatterns: originPatterns,
		logger:         logger,
	}
}

// ServeHTTP rejects the handshake with 401 unless a valid token is supplied
// in ?token= or the Authorization header.
func (s *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = util.ExtractToken(r)
	}
	claims, err := util.ParseJWT(token, s.jwtSecret)
	if err != nil {
		http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns})
	if err != nil {
		s.logger.Debug("WebSocket accept failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := newClient(claims.UserID, claims.Role, clientBuffer)
	metrics.ConnectionOpened("ws")
	defer func() {
		s.hub.Remove(client)
		metrics.ConnectionClosed("ws")
	}()

	log := s.logger.With(zap.String("user_id", claims.UserID))
	log.Debug("WebSocket connected")

	readErr := make(chan error, 1)
	go func() {
		readErr <- s.readLoop(ctx, conn, client, log)
	}()

	s.reply(client, ControlReady, nil)
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusGoingAway, "shutdown")
			return
		case err := <-readErr:
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				log.Debug("WebSocket read ended", zap.Error(err))
			}
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case frame := <-client.send:
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, frame)
			cancelWrite()
			if err != nil {
				_ = conn.Close(websocket.StatusInternalError, "write_failed")
				return
			}
		}
	}
}

func (s *WSServer) readLoop(ctx context.Context, conn *websocket.Conn, client *Client, log *zap.Logger) error {
	for {
		var msg ControlMessage
		// wsjson closes the connection itself on malformed JSON
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}

		projectID := decodeProjectID(msg.Data)
		if projectID == "" {
			s.reply(client, ControlError, "project id required")
			continue
		}

		switch msg.Event {
		case ControlJoin:
			if err := s.authz.Authorize(ctx, client.UserID, client.Role, projectID); err != nil {
				if !errors.Is(err, ErrForbidden) && !errors.Is(err, ErrProjectNotFound) {
					log.Warn("Room authorization failed", zap.String("project_id", projectID), zap.Error(err))
				}
				s.reply(client, ControlError, map[string]string{"event": ControlJoin, "projectId": projectID, "error": "forbidden"})
				continue
			}
			s.hub.Join(client, projectID)
		case ControlLeave:
			s.hub.Leave(client, projectID)
		default:
			s.reply(client, ControlError, "unknown event")
		}
	}
}

func (s *WSServer) reply(client *Client, event string, data any) {
	frame, err := json.Marshal(socketFrame{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case client.send <- frame:
	default:
	}
}

// decodeProjectID accepts either a bare JSON string or {"projectId": "..."}.
func decodeProjectID(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return strings.TrimSpace(id)
	}
	var obj struct {
		ProjectID string `json:"projectId"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.ProjectID)
	}
	return ""
}

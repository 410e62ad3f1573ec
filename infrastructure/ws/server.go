package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tone-row/resonance/domain/event"
	"github.com/tone-row/resonance/services"
	"github.com/tone-row/resonance/sink"
)

// Server upgrades websocket connections and bridges them to the session
// service: one reader goroutine parsing envelopes, one writer goroutine
// draining the connection's sink.
//
// Malformed frames are logged and ignored; the connection stays open. A
// session error never closes the transport either — clients only ever
// see valid session_state frames.
type Server struct {
	log        *slog.Logger
	service    services.ISessionService
	validate   *validator.Validate
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewServer(log *slog.Logger, service services.ISessionService, bufferSize int) *Server {
	return &Server{
		log:      log,
		service:  service,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			// Room access is by opaque name; there is no origin-based auth.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	participantID := r.URL.Query().Get("userId")
	if room == "" || participantID == "" {
		http.Error(w, "room and userId query parameters are required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	connSink := sink.NewConnSink(s.bufferSize)
	log := s.log.With("room", room, "participant", participantID, "conn", connID)

	done := make(chan struct{})
	go s.writeLoop(conn, connSink, done, log)

	s.service.Connect(room, connID, participantID, connSink)
	log.Info("Participant connected")

	s.readLoop(conn, room, participantID, connSink, log)

	s.service.Disconnect(room, connID, participantID)
	close(done)
	_ = conn.Close()
	log.Info("Participant disconnected")
}

// readLoop blocks until the client goes away or a network error occurs.
func (s *Server) readLoop(conn *websocket.Conn, room, participantID string,
	connSink *sink.ConnSink, log *slog.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Websocket read failed", "error", err)
			}
			return
		}

		envelope, err := DecodeEnvelope(data)
		if err != nil {
			log.Warn(fmt.Sprintf("Ignoring malformed frame : %.120s", data))
			continue
		}

		switch envelope.Type {
		case TypeGetSession:
			s.service.GetSession(room, connSink)
		case TypeAddStatement:
			var payload AddStatementPayload
			if err := s.decodePayload(envelope.Payload, &payload); err != nil {
				log.Warn("Ignoring invalid add_statement payload", "error", err)
				continue
			}
			s.service.AddStatement(room, payload.UserID, payload.Text)
		case TypeVoteResponse:
			var payload VoteResponsePayload
			if err := s.decodePayload(envelope.Payload, &payload); err != nil {
				log.Warn("Ignoring invalid vote_response payload", "error", err)
				continue
			}
			s.service.Vote(room, payload.UserID, *payload.StatementIndex, *payload.Response)
		default:
			log.Warn("Ignoring unknown message type", "type", envelope.Type)
		}
	}
}

// writeLoop pushes every session snapshot from the sink to the client.
func (s *Server) writeLoop(conn *websocket.Conn, connSink *sink.ConnSink,
	done chan struct{}, log *slog.Logger) {
	for {
		select {
		case <-done:
			return
		case evt := <-connSink.Updates:
			updated, ok := evt.(event.SessionUpdated)
			if !ok {
				log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
				continue
			}
			if err := conn.WriteJSON(NewSessionState(updated.Session)); err != nil {
				log.Warn("Websocket write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) decodePayload(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	return s.validate.Struct(out)
}

// ListenAndServe runs the HTTP server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	s.log.Info("Websocket server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

package services

import (
	"github.com/tone-row/resonance/contract"
	"github.com/tone-row/resonance/runtime"
)

// ISessionService is the transport-facing surface of the session core.
// All methods are asynchronous: effects arrive on the connection's sink.
type ISessionService interface {
	Connect(room, connID, participantID string, sink contract.EventSink)
	Disconnect(room, connID, participantID string)
	AddStatement(room, participantID, text string)
	Vote(room, participantID string, index int, response bool)
	GetSession(room string, sink contract.EventSink)
}

type SessionService struct {
	orchestrator *runtime.Orchestrator
}

func NewSessionService(o *runtime.Orchestrator) *SessionService {
	return &SessionService{orchestrator: o}
}

func (s *SessionService) Connect(room, connID, participantID string, sink contract.EventSink) {
	s.orchestrator.Connect(room, connID, participantID, sink)
}

func (s *SessionService) Disconnect(room, connID, participantID string) {
	s.orchestrator.Disconnect(room, connID, participantID)
}

func (s *SessionService) AddStatement(room, participantID, text string) {
	s.orchestrator.AddStatement(room, participantID, text)
}

func (s *SessionService) Vote(room, participantID string, index int, response bool) {
	s.orchestrator.Vote(room, participantID, index, response)
}

func (s *SessionService) GetSession(room string, sink contract.EventSink) {
	s.orchestrator.GetSession(room, sink)
}

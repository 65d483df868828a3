package session

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"rendezvous/internal/lifecycle"
	"rendezvous/pkg/interfaces"
	"rendezvous/pkg/types"
)

// Phase is the client-visible state of a session.
type Phase int

const (
	PhaseAwaitingName Phase = iota
	PhaseReady
	PhaseInQueue
	PhaseMatched
	PhaseAwaitingRating
)

var phaseNames = map[Phase]string{
	PhaseAwaitingName:   "awaiting_name",
	PhaseReady:          "ready",
	PhaseInQueue:        "in_queue",
	PhaseMatched:        "matched",
	PhaseAwaitingRating: "awaiting_rating",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// validPhases lists, per inbound action, the phases in which it is
// processed. Anything else is ignored.
var validPhases = map[string][]Phase{
	types.ActionSubmitName:   {PhaseAwaitingName},
	types.ActionJoinQueue:    {PhaseReady},
	types.ActionRejoinQueue:  {PhaseReady},
	types.ActionOffer:        {PhaseMatched},
	types.ActionAnswer:       {PhaseMatched},
	types.ActionCandidate:    {PhaseMatched},
	types.ActionSubmitRating: {PhaseAwaitingRating, PhaseReady},
	types.ActionEndCall:      {PhaseMatched, PhaseAwaitingRating},
}

// Allows reports whether action may be processed in phase p.
func (p Phase) Allows(action string) bool {
	return lo.Contains(validPhases[action], p)
}

// Session is the server side of one connected participant.
//
// The exported fields are owned by the hub and must only be read or
// written while holding the hub lock.
type Session struct {
	id   string
	conn interfaces.Connection

	Name     string
	Phase    Phase
	PeerName string
	Timer    *lifecycle.Timer
	Closed   bool
}

// New creates a session in PhaseAwaitingName for a freshly accepted connection.
func New(conn interfaces.Connection) *Session {
	return &Session{
		id:    uuid.NewString(),
		conn:  conn,
		Phase: PhaseAwaitingName,
	}
}

// ID returns the stable identifier used by the queue and match registry.
func (s *Session) ID() string {
	return s.id
}

// Send queues out on the session's channel.
func (s *Session) Send(out *types.Outbound) error {
	return s.conn.WriteJSON(out)
}

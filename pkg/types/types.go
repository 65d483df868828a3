package types

import (
	"encoding/json"
)

// Inbound actions accepted from clients.
const (
	ActionSubmitName   = "submitName"
	ActionJoinQueue    = "joinQueue"
	ActionRejoinQueue  = "rejoinQueue"
	ActionOffer        = "offer"
	ActionAnswer       = "answer"
	ActionCandidate    = "candidate"
	ActionSubmitRating = "submitRating"
	ActionEndCall      = "endCall"
)

// Outbound actions pushed to clients. ActionEndCall and the three
// negotiation actions are shared with the inbound set.
const (
	ActionNameSubmitted     = "nameSubmitted"
	ActionQueueJoined       = "queueJoined"
	ActionMatched           = "matched"
	ActionRatingSubmitted   = "ratingSubmitted"
	ActionYourRatingUpdated = "yourRatingUpdated"
	ActionAskToRejoin       = "askToRejoin"
	ActionError             = "error"
	ActionStartMatch        = "startMatch"
	ActionCountdown         = "countdown"
	ActionStartTimer        = "startTimer"
	ActionTimerUpdate       = "timerUpdate"
	ActionSurvey            = "survey"
	ActionPeerDisconnected  = "peerDisconnected"
)

// Inbound is a decoded client message. Only the fields relevant to the
// action are populated; Message and Rating are kept raw so negotiation
// payloads pass through untouched.
type Inbound struct {
	Action  string          `json:"action"`
	Name    *string         `json:"name,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Rating  json.RawMessage `json:"rating,omitempty"`
}

// Outbound is a message pushed to a client. Message holds either a
// human readable string or, for relayed negotiation messages, the
// sender's raw payload.
type Outbound struct {
	Action    string `json:"action"`
	Message   any    `json:"message,omitempty"`
	PeerName  string `json:"peerName,omitempty"`
	Initiator *bool  `json:"initiator,omitempty"`
	AvgRating string `json:"avgRating,omitempty"`
}

// Text returns Message as a string, or "" when it carries a raw payload.
func (o *Outbound) Text() string {
	s, _ := o.Message.(string)
	return s
}

// Notice builds an outbound message carrying only a text message.
func Notice(action, message string) *Outbound {
	return &Outbound{Action: action, Message: message}
}

// Matched builds the pairing announcement for one side of a match.
func Matched(message, peerName string, initiator bool) *Outbound {
	return &Outbound{
		Action:    ActionMatched,
		Message:   message,
		PeerName:  peerName,
		Initiator: &initiator,
	}
}

// Relay builds a forwarded negotiation message with the payload unchanged.
func Relay(action string, payload json.RawMessage) *Outbound {
	return &Outbound{Action: action, Message: payload}
}

// WithRating builds a message carrying a formatted average rating.
func WithRating(action, message, avg string) *Outbound {
	return &Outbound{Action: action, Message: message, AvgRating: avg}
}

// IsNegotiationAction reports whether action is relayed verbatim to the peer.
func IsNegotiationAction(action string) bool {
	switch action {
	case ActionOffer, ActionAnswer, ActionCandidate:
		return true
	default:
		return false
	}
}

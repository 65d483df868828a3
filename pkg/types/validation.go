package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// MaxNameLength bounds participant display names, in runes.
const MaxNameLength = 50

// DecodeInbound parses a client message and checks that the fields the
// action requires are present.
func DecodeInbound(data []byte) (*Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(ErrInvalidJSON, "decode inbound"), err)
	}

	switch in.Action {
	case ActionSubmitName:
		if in.Name == nil {
			return nil, errors.Wrapf(ErrMissingField, "%s requires name", in.Action)
		}
	case ActionOffer, ActionAnswer, ActionCandidate:
		if isAbsent(in.Message) {
			return nil, errors.Wrapf(ErrMissingField, "%s requires message", in.Action)
		}
	case ActionSubmitRating:
		if isAbsent(in.Rating) {
			return nil, errors.Wrapf(ErrMissingField, "%s requires rating", in.Action)
		}
	case ActionJoinQueue, ActionRejoinQueue, ActionEndCall:
	case "":
		return nil, errors.Wrap(ErrMissingField, "action")
	default:
		return nil, errors.Wrapf(ErrUnknownAction, "%q", in.Action)
	}

	return &in, nil
}

// ParseRating accepts a JSON integer or a string holding one. Values are
// not range checked.
func ParseRating(raw json.RawMessage) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, errors.WithSecondaryError(errors.Wrap(ErrInvalidRating, "decode rating"), err)
	}

	var text string
	switch t := v.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = strings.TrimSpace(t)
	default:
		return 0, ErrInvalidRating
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, errors.Wrapf(ErrInvalidRating, "%q", text)
	}
	return int(n), nil
}

// NormalizeName trims surrounding whitespace and validates the length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < 1 || n > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

package log

import "go.uber.org/zap"

const (
	FieldNameSessionID = "session_id"
	FieldNameName      = "name"
	FieldNameMatchID   = "match_id"
)

// FieldSessionID tags a log line with a session identifier.
func FieldSessionID(id string) zap.Field {
	return zap.String(FieldNameSessionID, id)
}

// FieldName tags a log line with a participant name.
func FieldName(name string) zap.Field {
	return zap.String(FieldNameName, name)
}

// FieldMatchID tags a log line with a match identifier.
func FieldMatchID(id string) zap.Field {
	return zap.String(FieldNameMatchID, id)
}

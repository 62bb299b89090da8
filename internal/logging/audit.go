package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// AUDIT EVENT TYPES - Maps to Mangle predicates
// =============================================================================

// AuditEventType defines the type of audit event (maps to Mangle predicate)
type AuditEventType string

const (
	// Command dispatch -> command_event/5
	AuditCommandParsed   AuditEventType = "command_parsed"
	AuditCommandRejected AuditEventType = "command_rejected"

	// Generation -> generation_event/6
	AuditGeneration AuditEventType = "generation"

	// Definition loading -> load_event/4
	AuditLoad AuditEventType = "load"

	// Session events -> session_event/3
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionReset AuditEventType = "session_reset"
)

// AuditEvent represents a structured audit log entry that can be parsed to Mangle.
type AuditEvent struct {
	Timestamp  int64
	EventType  AuditEventType
	SessionID  string
	Target     string
	Action     string
	Success    bool
	DurationMs int64
	Count      int
	Error      string
}

// AuditLogger writes audit events to the audit category. Each entry carries a
// pre-formatted Mangle fact in its "mangle" field.
type AuditLogger struct {
	sessionID string
}

// AuditWithSession creates an audit logger scoped to a session
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	l := Get(CategoryAudit)
	if l.sugar == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" {
		event.SessionID = a.sessionID
	}
	l.sugar.Desugar().Info(string(event.EventType),
		zap.String("session", event.SessionID),
		zap.String("target", event.Target),
		zap.String("action", event.Action),
		zap.Bool("success", event.Success),
		zap.Int64("dur_ms", event.DurationMs),
		zap.String("error", event.Error),
		zap.String("mangle", MangleFact(event)),
	)
}

// MangleFact renders an event as a Mangle fact.
func MangleFact(e AuditEvent) string {
	switch e.EventType {
	case AuditCommandParsed, AuditCommandRejected:
		return fmt.Sprintf("command_event(%d, /%s, %q, %q, %v).",
			e.Timestamp, e.EventType, e.Action, escapeString(e.Target), e.Success)
	case AuditGeneration:
		return fmt.Sprintf("generation_event(%d, %q, %q, %d, %v, %d).",
			e.Timestamp, e.SessionID, e.Target, e.Count, e.Success, e.DurationMs)
	case AuditLoad:
		return fmt.Sprintf("load_event(%d, %q, %d, %v).",
			e.Timestamp, escapeString(e.Target), e.Count, e.Success)
	case AuditSessionStart, AuditSessionReset:
		return fmt.Sprintf("session_event(%d, /%s, %q).",
			e.Timestamp, e.EventType, e.SessionID)
	default:
		return fmt.Sprintf("audit_event(%d, /%s, %q, %v).",
			e.Timestamp, e.EventType, escapeString(e.Target), e.Success)
	}
}

// escapeString strips characters that would break a quoted Mangle string.
func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n', '\r', '\t':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// AUDIT LOGGING METHODS
// =============================================================================

// CommandParsed records a sentence matched by a rule.
func (a *AuditLogger) CommandParsed(rule, sentence string, success bool, errMsg string) {
	eventType := AuditCommandParsed
	if !success {
		eventType = AuditCommandRejected
	}
	a.Log(AuditEvent{EventType: eventType, Action: rule, Target: sentence, Success: success, Error: errMsg})
}

// Generation records one compile-solve-decode cycle.
func (a *AuditLogger) Generation(inventionID string, individuals int, satisfiable bool, durationMs int64) {
	a.Log(AuditEvent{
		EventType:  AuditGeneration,
		Target:     inventionID,
		Count:      individuals,
		Success:    satisfiable,
		DurationMs: durationMs,
	})
}

// Load records a definitions file load.
func (a *AuditLogger) Load(path string, sentences int, success bool, errMsg string) {
	a.Log(AuditEvent{EventType: AuditLoad, Target: path, Count: sentences, Success: success, Error: errMsg})
}

// SessionStart records a new session.
func (a *AuditLogger) SessionStart() {
	a.Log(AuditEvent{EventType: AuditSessionStart, Success: true})
}

// SessionReset records an ontology reset.
func (a *AuditLogger) SessionReset() {
	a.Log(AuditEvent{EventType: AuditSessionReset, Success: true})
}

package behavior

import (
	"fmt"
	"strings"
)

// SignalKind enumerates the situations a behavioral rule can react to.
type SignalKind string

const (
	SignalChallenged          SignalKind = "challenged"
	SignalEvidencePresented   SignalKind = "evidence_presented"
	SignalEvidenceContradicts SignalKind = "evidence_contradicts"
	SignalEvidenceReceived    SignalKind = "evidence_received"
	SignalAttacked            SignalKind = "attacked"
	SignalCoerced             SignalKind = "coerced"
	SignalThreatened          SignalKind = "threatened"
	SignalClientRequest       SignalKind = "client_request"
	SignalClientDirective     SignalKind = "client_directive"
	SignalEvaluationRequested SignalKind = "evaluation_requested"
	SignalTestsPossible       SignalKind = "tests_possible"
	SignalApplicationFiled    SignalKind = "application_filed"
	SignalInvestigation       SignalKind = "investigation_assigned"
	SignalFindings            SignalKind = "findings_documented"
	SignalKeyword             SignalKind = "keyword"
)

var signalKinds = []SignalKind{
	SignalChallenged,
	SignalEvidencePresented,
	SignalEvidenceContradicts,
	SignalEvidenceReceived,
	SignalAttacked,
	SignalCoerced,
	SignalThreatened,
	SignalClientRequest,
	SignalClientDirective,
	SignalEvaluationRequested,
	SignalTestsPossible,
	SignalApplicationFiled,
	SignalInvestigation,
	SignalFindings,
	SignalKeyword,
}

func SignalKinds() []SignalKind {
	return append([]SignalKind(nil), signalKinds...)
}

// SignalKindNames lists the accepted kinds, comma separated.
func SignalKindNames() string {
	names := make([]string, 0, len(signalKinds))
	for _, kind := range SignalKinds() {
		names = append(names, string(kind))
	}
	return strings.Join(names, ", ")
}

func ParseSignalKind(value string) (SignalKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	for _, kind := range signalKinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown signal kind %q (expected one of: %s)", value, SignalKindNames())
}

// Signal is one observed condition. Detail carries free text for
// SignalKeyword and optional qualifiers for the other kinds.
type Signal struct {
	Kind   SignalKind `json:"kind"`
	Detail string     `json:"detail,omitempty"`
}

// Context is the situation a profile decides against.
type Context struct {
	EventID string   `json:"event_id,omitempty"`
	Signals []Signal `json:"signals"`
}

func NewContext(eventID string, signals ...Signal) Context {
	return Context{EventID: eventID, Signals: signals}
}

// Text renders the signals as the lowercase phrase rules are matched against.
func (c Context) Text() string {
	parts := make([]string, 0, len(c.Signals))
	for _, signal := range c.Signals {
		phrase := strings.ReplaceAll(string(signal.Kind), "_", " ")
		if signal.Kind == SignalKeyword {
			phrase = ""
		}
		if detail := strings.TrimSpace(signal.Detail); detail != "" {
			phrase = strings.TrimSpace(phrase + " " + detail)
		}
		if phrase != "" {
			parts = append(parts, phrase)
		}
	}
	return strings.ToLower(strings.Join(parts, "; "))
}

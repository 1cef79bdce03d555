package model

import (
	"fmt"
	"strings"
)

type VerificationStatus string

const (
	StatusSaved          VerificationStatus = "saved"
	StatusVerified       VerificationStatus = "verified"
	StatusPartial        VerificationStatus = "partial"
	StatusCircumstantial VerificationStatus = "circumstantial"
	StatusSpeculative    VerificationStatus = "speculative"
	StatusMissing        VerificationStatus = "missing"
)

// DefaultStatus is assigned to records that arrive without one.
const DefaultStatus = StatusPartial

var verificationStatuses = []VerificationStatus{
	StatusSaved,
	StatusVerified,
	StatusPartial,
	StatusCircumstantial,
	StatusSpeculative,
	StatusMissing,
}

func ParseVerificationStatus(value string) (VerificationStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return DefaultStatus, nil
	}
	for _, status := range verificationStatuses {
		if string(status) == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown verification status: %q", value)
}

type EntityKind string

const (
	KindPerson               EntityKind = "person"
	KindOrganization         EntityKind = "organization"
	KindGroup                EntityKind = "group"
	KindSystem               EntityKind = "system"
	KindCommunicationChannel EntityKind = "communication_channel"
)

var entityKinds = []EntityKind{KindPerson, KindOrganization, KindGroup, KindSystem, KindCommunicationChannel}

func ParseEntityKind(value string) (EntityKind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	for _, kind := range entityKinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind: %q", value)
}

type EventKind string

const (
	EventCommunication EventKind = "communication"
	EventTransaction   EventKind = "transaction"
	EventMeeting       EventKind = "meeting"
	EventDecision      EventKind = "decision"
	EventAction        EventKind = "action"
	EventEvidence      EventKind = "evidence"
	EventGeneral       EventKind = "general"
)

var eventKinds = []EventKind{EventCommunication, EventTransaction, EventMeeting, EventDecision, EventAction, EventEvidence, EventGeneral}

func ParseEventKind(value string) (EventKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return EventGeneral, nil
	}
	for _, kind := range eventKinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown event kind: %q", value)
}

type FlowKind string

const (
	FlowFinancial   FlowKind = "financial"
	FlowInformation FlowKind = "information"
	FlowInfluence   FlowKind = "influence"
	FlowMaterial    FlowKind = "material"
)

var flowKinds = []FlowKind{FlowFinancial, FlowInformation, FlowInfluence, FlowMaterial}

func ParseFlowKind(value string) (FlowKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, kind := range flowKinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown flow kind: %q", value)
}

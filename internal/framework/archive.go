package framework

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoReport = errors.New("no archived report")

// ArchivedReport is a report as it was produced for one case at one time.
type ArchivedReport struct {
	ID            uuid.UUID `json:"id"`
	CaseID        string    `json:"case_id"`
	RulesRevision string    `json:"rules_revision"`
	Overall       string    `json:"overall_risk_level"`
	CreatedAt     time.Time `json:"created_at"`
	Report        *Report   `json:"report,omitempty"`
}

// Archive keeps past reports so that successive analyses of a case can be
// compared.
type Archive interface {
	SaveReport(ctx context.Context, caseID, rulesRevision string, report *Report) (*ArchivedReport, error)
	LatestReport(ctx context.Context, caseID string) (*ArchivedReport, error)
	ListReports(ctx context.Context, caseID string, limit int) ([]ArchivedReport, error)
}

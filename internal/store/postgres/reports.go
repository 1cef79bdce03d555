package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"casegraph/internal/framework"
)

func (c *Client) SaveReport(ctx context.Context, caseID, rulesRevision string, report *framework.Report) (*framework.ArchivedReport, error) {
	if strings.TrimSpace(caseID) == "" {
		return nil, fmt.Errorf("case id must not be empty")
	}
	if report == nil {
		return nil, fmt.Errorf("report must not be nil")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}

	id := uuid.New()
	var createdAt time.Time
	err = c.pool.QueryRow(ctx, `
INSERT INTO case_reports (id, case_id, rules_revision, overall_risk, report)
VALUES ($1::uuid, $2, $3, $4, $5)
RETURNING created_at
`, id.String(), caseID, rulesRevision, report.RiskAssessment.Overall, payload).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}

	return &framework.ArchivedReport{
		ID:            id,
		CaseID:        caseID,
		RulesRevision: rulesRevision,
		Overall:       report.RiskAssessment.Overall,
		CreatedAt:     createdAt,
		Report:        report,
	}, nil
}

func (c *Client) LatestReport(ctx context.Context, caseID string) (*framework.ArchivedReport, error) {
	row := c.pool.QueryRow(ctx, `
SELECT id::text, case_id, rules_revision, overall_risk, created_at, report
FROM case_reports
WHERE case_id = $1
ORDER BY created_at DESC
LIMIT 1
`, caseID)

	var (
		archived framework.ArchivedReport
		id       string
		payload  []byte
	)
	err := row.Scan(&id, &archived.CaseID, &archived.RulesRevision, &archived.Overall, &archived.CreatedAt, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caseID, framework.ErrNoReport)
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest report: %w", err)
	}

	if archived.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing report id: %w", err)
	}
	archived.Report = &framework.Report{}
	if err := json.Unmarshal(payload, archived.Report); err != nil {
		return nil, fmt.Errorf("unmarshaling report: %w", err)
	}
	return &archived, nil
}

// ListReports returns report headers, newest first, without the report body.
func (c *Client) ListReports(ctx context.Context, caseID string, limit int) ([]framework.ArchivedReport, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := c.pool.Query(ctx, `
SELECT id::text, case_id, rules_revision, overall_risk, created_at
FROM case_reports
WHERE case_id = $1
ORDER BY created_at DESC
LIMIT $2
`, caseID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	results := make([]framework.ArchivedReport, 0)
	for rows.Next() {
		var (
			r  framework.ArchivedReport
			id string
		)
		if err := rows.Scan(&id, &r.CaseID, &r.RulesRevision, &r.Overall, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing report id: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return results, nil
}

// PruneReports deletes all but the newest keep reports of a case.
func (c *Client) PruneReports(ctx context.Context, caseID string, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative")
	}
	tag, err := c.pool.Exec(ctx, `
DELETE FROM case_reports
WHERE case_id = $1
  AND id NOT IN (
    SELECT id FROM case_reports WHERE case_id = $1 ORDER BY created_at DESC LIMIT $2
  )
`, caseID, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning reports: %w", err)
	}
	return tag.RowsAffected(), nil
}

package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema creates the report archive. Every statement is idempotent.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS case_reports (
    id             UUID PRIMARY KEY,
    case_id        TEXT NOT NULL,
    rules_revision TEXT NOT NULL DEFAULT '',
    overall_risk   TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    report         JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_case_reports_case_created ON case_reports (case_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_case_reports_risk ON case_reports (overall_risk);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

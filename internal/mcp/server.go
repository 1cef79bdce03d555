package mcp

import (
	"context"
	"sync"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"casegraph/internal/framework"
	"casegraph/internal/store"
)

type Options struct {
	CaseID  string
	Version string
	// Archive is optional; without it analyze_case cannot archive reports.
	Archive framework.Archive
	// Now stamps decisions. It defaults to time.Now.
	Now func() time.Time
}

// Server exposes one loaded case over MCP. Tool calls may arrive
// concurrently, so every handler holds mu while it touches the store.
type Server struct {
	analyzer *framework.Analyzer
	store    *store.Store
	opts     Options
	mcp      *sdk.Server

	mu       sync.Mutex
	analyzed bool
}

func NewServer(analyzer *framework.Analyzer, st *store.Store, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{
		analyzer: analyzer,
		store:    st,
		opts:     opts,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "casegraph",
			Version: opts.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

// ensureAnalyzed runs the analysis and marks the store as analyzed. Read
// tools call it only on first use; analyze_case calls it every time.
// Callers hold mu.
func (s *Server) ensureAnalyzed(ctx context.Context) (*framework.Report, error) {
	report, err := s.analyzer.Analyze(ctx, s.store)
	if err != nil {
		return nil, err
	}
	s.analyzed = true
	return report, nil
}

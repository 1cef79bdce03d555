package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logJSON    bool
)

func main() {
	root := &cobra.Command{
		Use:          "casegraph",
		Short:        "Entity, event and flow inference for legal case analysis",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "casegraph.yaml", "Project config file")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON lines")
	root.AddCommand(initCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(analyzeCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(dbCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/promptc/internal/compiler"
	"github.com/agentic-research/promptc/internal/mcpserver"
	"github.com/agentic-research/promptc/internal/transform"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the compiler over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := osfs.New("/")
		logger := newLogger(flagLogLevel, flagLogFormat, os.Stderr)

		srv := mcpserver.New(mcpserver.Deps{
			NewCompiler: func(mode transform.InterpolationMode) *compiler.Compiler {
				return compiler.New(fs, logger, compiler.Options{Interpolation: mode})
			},
			Logger: logger,
		})
		return srv.Serve(cmd.Context())
	},
}

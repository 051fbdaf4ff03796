// Package mcpserver exposes the compiler over the Model Context Protocol
// so agents can compile and check authoring sources through stdio tools.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/promptc/internal/compiler"
	"github.com/agentic-research/promptc/internal/transform"
)

// Server wraps an MCP server with the compiler tools registered.
type Server struct {
	newCompiler func(mode transform.InterpolationMode) *compiler.Compiler
	logger      *slog.Logger
	mcpServer   *server.MCPServer
}

// Deps holds what the Server needs to run.
type Deps struct {
	// NewCompiler builds a fresh compiler per call; compilations share no
	// state.
	NewCompiler func(mode transform.InterpolationMode) *compiler.Compiler
	Logger      *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	s := &Server{
		newCompiler: deps.NewCompiler,
		logger:      logger,
	}

	mcpSrv := server.NewMCPServer(
		"promptc",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("promptc compiles TSX command/agent authoring sources to Markdown. Use promptc.compile to compile a unit and get the Markdown back, and promptc.check to validate a unit without emitting output."),
	)
	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or
// stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying server for tests or custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: compileTool(), Handler: s.handleCompile},
		{Tool: checkTool(), Handler: s.handleCheck},
	}
}

func compileTool() mcp.Tool {
	return mcp.NewTool("promptc.compile",
		mcp.WithDescription("Compile one authoring source file to Markdown"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .tsx source unit")),
		mcp.WithString("mode",
			mcp.Enum("normalize", "preserve"),
			mcp.Description("Template interpolation emission mode (default: normalize)"),
		),
	)
}

func checkTool() mcp.Tool {
	return mcp.NewTool("promptc.check",
		mcp.WithDescription("Validate one authoring source file without emitting output"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .tsx source unit")),
	)
}

func (s *Server) handleCompile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	mode := transform.NormalizeInterpolation
	if req.GetString("mode", "normalize") == "preserve" {
		mode = transform.PreserveInterpolation
	}

	art, err := s.newCompiler(mode).CompileFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compile %s: %v", path, err)), nil
	}
	s.logger.Info("compiled via mcp", "source", path, "out", art.OutPath)
	return mcp.NewToolResultText(art.Content), nil
}

func (s *Server) handleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	if _, err := s.newCompiler(transform.NormalizeInterpolation).CompileFile(path); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: ok", path)), nil
}

package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/promptc/internal/compiler"
	"github.com/agentic-research/promptc/internal/transform"
)

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func testServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	fs := memfs.New()
	for p, content := range files {
		require.NoError(t, util.WriteFile(fs, p, []byte(content), 0o644))
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Deps{
		NewCompiler: func(mode transform.InterpolationMode) *compiler.Compiler {
			return compiler.New(fs, logger, compiler.Options{Interpolation: mode})
		},
		Logger: logger,
	})
}

func TestNewRegistersServer(t *testing.T) {
	s := testServer(t, nil)
	assert.NotNil(t, s.MCPServer())
}

func TestCompileHandler(t *testing.T) {
	s := testServer(t, map[string]string{
		"/p/cmd.tsx": `<Command name="n" description="d"><p>body</p></Command>`,
	})

	res, err := s.handleCompile(context.Background(), callReq(map[string]any{"path": "/p/cmd.tsx"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, textContent(t, res), "name: n")

	res, err = s.handleCompile(context.Background(), callReq(map[string]any{"path": "/p/missing.tsx"}))
	require.NoError(t, err, "tool failures surface as error results, not transport errors")
	assert.True(t, res.IsError)
}

func TestCheckHandler(t *testing.T) {
	s := testServer(t, map[string]string{
		"/p/ok.tsx":  `<Command name="n" description="d"><p>x</p></Command>`,
		"/p/bad.tsx": `<Command description="no name"><p>x</p></Command>`,
	})

	res, err := s.handleCheck(context.Background(), callReq(map[string]any{"path": "/p/ok.tsx"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textContent(t, res), "ok")

	res, err = s.handleCheck(context.Background(), callReq(map[string]any{"path": "/p/bad.tsx"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

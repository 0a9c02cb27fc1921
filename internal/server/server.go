package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New は MCP サーバーを生成し、ツールを登録して返します。
// ビジネスロジックは handler に委譲し、ここではプロトコル変換のみ行います。
func New(handler *CheckHandler) *server.MCPServer {
	s := server.NewMCPServer(
		"push-gate",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	pushTool := mcp.NewTool("check_push",
		mcp.WithDescription("Runs the push gate over the changes between two revisions of a git repository and reports syntax and style problems."),
		mcp.WithString("repo_path",
			mcp.Required(),
			mcp.Description("Path of the git repository"),
		),
		mcp.WithString("old_revision",
			mcp.Required(),
			mcp.Description("Full object name the branch pointed to before the push (all zeros for a new branch)"),
		),
		mcp.WithString("new_revision",
			mcp.Required(),
			mcp.Description("Full object name being pushed (all zeros for a branch deletion)"),
		),
		mcp.WithString("branch",
			mcp.Description("Ref being updated. Default: refs/heads/main"),
		),
	)

	fileTool := mcp.NewTool("check_file",
		mcp.WithDescription("Validates one working-tree file with the same syntax and style rules the push gate applies."),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Path of the project root"),
		),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path relative to the project root"),
		),
	)

	s.AddTool(pushTool, handler.HandlePush)
	s.AddTool(fileTool, handler.HandleFile)

	return s
}

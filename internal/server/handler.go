package server

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/0muji4/push-gate/internal/change"
	"github.com/0muji4/push-gate/internal/config"
	"github.com/0muji4/push-gate/internal/gate"
	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/report"
	"github.com/0muji4/push-gate/internal/source"
	"github.com/0muji4/push-gate/internal/workspace"
)

// CheckHandler は MCP リクエストを gate のユースケースに変換する Adapter です。
type CheckHandler struct {
	cfg *config.Config
	log *logger.Logger

	// newService opens the repository at an absolute path.
	newService func(repoPath string) workspace.RevisionService
}

// NewCheckHandler は git コマンドでリポジトリを読む CheckHandler を生成します。
func NewCheckHandler(cfg *config.Config, log *logger.Logger) *CheckHandler {
	runner := &workspace.ProdExecRunner{}
	return &CheckHandler{
		cfg: cfg,
		log: log,
		newService: func(repoPath string) workspace.RevisionService {
			return workspace.NewGitService(runner, repoPath, cfg.Git.Timeout)
		},
	}
}

// HandlePush は check_push ツール呼び出しを受け取り、ゲート判定を実行します。
func (h *CheckHandler) HandlePush(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawPath, err := req.RequireString("repo_path")
	if err != nil {
		return mcp.NewToolResultError("repo_path is required"), nil
	}
	// 相対パスを絶対パスに解決
	repoPath, err := filepath.Abs(rawPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repo_path: %v", err)), nil
	}
	oldRev, err := req.RequireString("old_revision")
	if err != nil {
		return mcp.NewToolResultError("old_revision is required"), nil
	}
	newRev, err := req.RequireString("new_revision")
	if err != nil {
		return mcp.NewToolResultError("new_revision is required"), nil
	}
	branch := req.GetString("branch", "refs/heads/main")

	u, err := change.ParseRefUpdate(fmt.Sprintf("%s %s %s", oldRev, newRev, branch))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	g := gate.NewFromConfig(h.cfg, h.newService(repoPath), h.log.With("repo", repoPath))
	out, err := g.Evaluate(ctx, u)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("push check aborted: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%sResult: %s (exit %d)", out.Output(), out.State, out.ExitCode)), nil
}

// HandleFile は check_file ツール呼び出しを受け取り、作業ツリー上の1ファイルを検証します。
func (h *CheckHandler) HandleFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawPath, err := req.RequireString("project_path")
	if err != nil {
		return mcp.NewToolResultError("project_path is required"), nil
	}
	projectPath, err := filepath.Abs(rawPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid project_path: %v", err)), nil
	}
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError("file_path is required"), nil
	}
	filePath = filepath.ToSlash(filepath.Clean(filePath))

	switch source.NewFetcher(nil, h.cfg.Scope.ExemptPrefixes, h.cfg.Scope.Extensions).Classify(filePath) {
	case source.Exempt:
		return mcp.NewToolResultText(fmt.Sprintf("Skipping exempt path: %s", filePath)), nil
	case source.OutOfScope:
		return mcp.NewToolResultText(fmt.Sprintf("%s is not a recognized source file.", filePath)), nil
	}

	data, err := workspace.NewFSReader(projectPath).ReadFile(filePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", filePath, err)), nil
	}
	unit := source.NewUnit(filePath, data)

	agg := report.NewAggregator()
	for _, v := range gate.BuiltinValidators(h.cfg) {
		found, err := v.Validate(ctx, unit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s validator: %v", v.Kind(), err)), nil
		}
		agg.Add(v.Kind(), unit.Path, found)
	}

	rep := agg.Report()
	if rep.Empty() {
		return mcp.NewToolResultText(fmt.Sprintf("No problems found in %s.", filePath)), nil
	}
	return mcp.NewToolResultText(report.Render(rep)), nil
}

package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/0muji4/push-gate/internal/config"
	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/workspace"
)

var (
	revA = strings.Repeat("a", 40)
	revB = strings.Repeat("b", 40)
)

func newTestHandler(repo *workspace.MemRepo) *CheckHandler {
	cfg := config.Default()
	cfg.Scope.ExemptPrefixes = []string{"vendor/"}
	h := NewCheckHandler(cfg, logger.Nop())
	h.newService = func(string) workspace.RevisionService { return repo }
	return h
}

func callTool(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestHandlePush_Rejected(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.Commit(revA, map[string]string{"a.go": "package p\n"})
	repo.Commit(revB, map[string]string{"a.go": "package p\n\nvar x = 1 \n"})

	res, err := newTestHandler(repo).HandlePush(context.Background(), callTool(map[string]any{
		"repo_path":    "/srv/repo.git",
		"old_revision": revA,
		"new_revision": revB,
	}))
	if err != nil {
		t.Fatalf("HandlePush: %v", err)
	}
	text := resultText(t, res)
	if res.IsError || !strings.Contains(text, "W291 trailing whitespace") || !strings.Contains(text, "Result: rejected (exit 2)") {
		t.Errorf("result = %q", text)
	}
}

func TestHandlePush_Errors(t *testing.T) {
	failing := workspace.NewMemRepo()
	failing.FailDiff("fatal: bad object")

	tests := []struct {
		name string
		repo *workspace.MemRepo
		args map[string]any
		want string
	}{
		{"missing repo", workspace.NewMemRepo(), map[string]any{"old_revision": revA, "new_revision": revB}, "repo_path is required"},
		{"bad revision", workspace.NewMemRepo(), map[string]any{"repo_path": ".", "old_revision": "abc", "new_revision": revB}, "invalid revision"},
		{"diff failure", failing, map[string]any{"repo_path": ".", "old_revision": revA, "new_revision": revB}, "fatal: bad object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestHandler(tt.repo).HandlePush(context.Background(), callTool(tt.args))
			if err != nil {
				t.Fatalf("HandlePush: %v", err)
			}
			if !res.IsError || !strings.Contains(resultText(t, res), tt.want) {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestHandleFile(t *testing.T) {
	root := t.TempDir()
	write := func(name, content string) {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("ok.go", "package p\n")
	write("bad.go", "package p\n\nfunc f() {\n\tg(1\n}\n")
	write("vendor/x.go", "package (\n")
	write("notes.txt", "x \n")

	tests := []struct {
		file    string
		want    string
		isError bool
	}{
		{"ok.go", "No problems found in ok.go.", false},
		{"bad.go", "Syntax errors (SyntaxError):", false},
		{"vendor/x.go", "Skipping exempt path: vendor/x.go", false},
		{"notes.txt", "not a recognized source file", false},
		{"../outside.go", "outside project root", true},
	}
	h := newTestHandler(workspace.NewMemRepo())
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			res, err := h.HandleFile(context.Background(), callTool(map[string]any{
				"project_path": root,
				"file_path":    tt.file,
			}))
			if err != nil {
				t.Fatalf("HandleFile: %v", err)
			}
			text := resultText(t, res)
			if res.IsError != tt.isError || !strings.Contains(text, tt.want) {
				t.Errorf("result = %q (isError=%v)", text, res.IsError)
			}
		})
	}
}

func TestNew_RegistersTools(t *testing.T) {
	if s := New(newTestHandler(workspace.NewMemRepo())); s == nil {
		t.Fatal("New returned nil")
	}
}

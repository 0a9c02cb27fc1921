package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <repo_path> <old_revision> <new_revision> [branch]")
		os.Exit(1)
	}

	args := map[string]any{
		"repo_path":    os.Args[1],
		"old_revision": os.Args[2],
		"new_revision": os.Args[3],
	}
	if len(os.Args) >= 5 {
		args["branch"] = os.Args[4]
	}

	serverBin := os.Getenv("MCP_SERVER_BIN")
	if serverBin == "" {
		serverBin = "mcp-server"
	}

	// --- MCP クライアントの起動（サーバープロセスを spawn） ---
	c, err := client.NewStdioMCPClient(
		serverBin,
		os.Environ(),
	)
	if err != nil {
		log.Fatalf("failed to create MCP client: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// --- Initialize ハンドシェイク ---
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "push-gate-client",
		Version: "0.1.0",
	}

	initResult, err := c.Initialize(ctx, initReq)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Connected to: %s %s\n", initResult.ServerInfo.Name, initResult.ServerInfo.Version)

	// --- check_push ツールの呼び出し ---
	toolReq := mcp.CallToolRequest{}
	toolReq.Params.Name = "check_push"
	toolReq.Params.Arguments = args

	result, err := c.CallTool(ctx, toolReq)
	if err != nil {
		log.Fatalf("tool call failed: %v", err)
	}

	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			fmt.Println(tc.Text)
		}
	}
	if result.IsError {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/0muji4/push-gate/internal/config"
	apperrors "github.com/0muji4/push-gate/internal/errors"
	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/server"
)

func main() {
	// --- 設定の読み込み ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "push-gate: %v\n", err)
		os.Exit(apperrors.ExitCode(apperrors.ConfigInvalid(err)))
	}
	// stdout は MCP のトランスポートなのでログは stderr のみ
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	// --- DI: Adapter 層の組み立て ---
	handler := server.NewCheckHandler(cfg, log)
	s := server.New(handler)

	// --- Framework: MCP stdio サーバーの起動 ---
	log.Info("push-gate MCP server starting")
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("server error", err)
		os.Exit(apperrors.ExitEnvironment)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aigameforge/forge/internal/config"
	"github.com/aigameforge/forge/internal/domain/engine"
	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/domain/session"
	"github.com/aigameforge/forge/internal/flow"
	"github.com/aigameforge/forge/internal/github"
	"github.com/aigameforge/forge/internal/localstore"
	"github.com/aigameforge/forge/internal/mcp"
	"github.com/aigameforge/forge/internal/sqlite"
	"github.com/aigameforge/forge/internal/supabase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if logPath := os.Getenv("FORGE_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	slot := localstore.NewFileSlot(cfg.Storage.Path)
	local := localstore.New(slot, logger)
	settings := engine.NewStore(cfg.Credentials.Path)

	var (
		remote        project.RemoteStore
		resolver      mcp.SessionResolver
		staticSession *session.Session
	)
	switch cfg.Remote.Backend {
	case "supabase":
		client := supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey, logger)
		remote = client
		resolver = client
		if cfg.Auth.Token != "" {
			sess, err := client.ResolveSession(context.Background(), cfg.Auth.Token)
			if err != nil {
				logger.Warn("could not resolve configured auth token, running local-only", "error", err)
			} else {
				staticSession = sess
			}
		}
	case "sqlite":
		if err := ensureDBDir(cfg.Remote.DBPath); err != nil {
			logger.Error("failed to prepare database path", "error", err)
			os.Exit(1)
		}
		db, err := sqlite.New(cfg.Remote.DBPath)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.RunMigrations(); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		remote = sqlite.NewProjectStore(db)
		// Self-hosted deployments have no auth service; the configured
		// token and user id stand in for one.
		if cfg.Auth.UserID != "" {
			staticSession = &session.Session{UserID: cfg.Auth.UserID, AccessToken: cfg.Auth.Token}
			resolver = staticResolver{token: cfg.Auth.Token, session: staticSession}
		}
	}

	model := flow.NewGeminiModel(cfg.AI.APIKey, cfg.AI.Model)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: project.NewService(local, remote, logger),
			Flows:    flow.NewService(model, logger),
			Settings: settings,
			GitHub:   github.New(cfg.GitHub.BaseURL, logger),
		},
		Resolver:      resolver,
		StaticSession: staticSession,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
	} else {
		runHTTPMode(logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	}
}

// staticResolver accepts exactly one bearer token.
type staticResolver struct {
	token   string
	session *session.Session
}

func (r staticResolver) ResolveSession(_ context.Context, token string) (*session.Session, error) {
	if token != r.token {
		return nil, fmt.Errorf("invalid bearer token")
	}
	return r.session, nil
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	transport := &sdkmcp.StdioTransport{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, transport); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a log file, truncating the oldest half when
// it grows past maxLogSizeBytes.
type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return &logFileWriter{path: path, file: file}, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}

	info, err := w.file.Stat()
	if err != nil {
		return n, nil
	}
	if info.Size() > maxLogSizeBytes {
		if err := w.truncateOldest(info.Size()); err != nil {
			fmt.Fprintf(os.Stderr, "log rotate error: %v\n", err)
		}
	}
	return n, nil
}

func (w *logFileWriter) truncateOldest(size int64) error {
	keepFrom := size - keepLogSizeBytes
	if keepFrom <= 0 {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.ReadAt(buf, keepFrom); err != nil && err != io.EOF {
		return err
	}
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.WriteAt(buf, 0); err != nil {
		return err
	}
	_, err := w.file.Seek(0, io.SeekEnd)
	return err
}

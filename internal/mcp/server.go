package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"avaloniamcp/internal/cache"
	"avaloniamcp/internal/config"
	"avaloniamcp/internal/knowledge"
	"avaloniamcp/internal/logging"

	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "avalonia-mcp"
	ServerVersion = "1.0.0"
)

// Server represents an MCP server instance using mcp-go
type Server struct {
	config    *config.Config
	logger    *logging.AppLogger
	cache     *cache.Cache
	base      *knowledge.Base
	mcpServer *server.MCPServer

	mu      sync.Mutex
	catalog map[string]ResourceInfo

	stopJanitor func()
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewServer creates a new MCP server instance. The cache is built from the
// cache section of cfg; nothing touches the data directory until Start.
func NewServer(cfg *config.Config, logger *logging.AppLogger) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	c := cache.New(
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
		cache.WithDefaultTTL(cfg.Cache.DefaultTTL),
		cache.WithSingleFlight(cfg.Cache.SingleFlight),
		cache.WithLogger(logger),
	)

	return &Server{
		config:  cfg,
		logger:  logger,
		cache:   c,
		base:    knowledge.New(cfg.DataDir, c, logger),
		catalog: make(map[string]ResourceInfo),
	}
}

// Cache returns the resource cache backing the server
func (s *Server) Cache() *cache.Cache { return s.cache }

// Base returns the knowledge base the handlers read from
func (s *Server) Base() *knowledge.Base { return s.base }

// Preload warms the cache with the configured data files.
func (s *Server) Preload(ctx context.Context) cache.PreloadReport {
	report := s.base.PreloadFiles(ctx, s.config.Cache.PreloadFiles, s.config.Cache.PreloadTTL)
	if !report.OK() {
		s.logger.Warn("Some knowledge base files could not be preloaded", "failed", len(report.Failed))
	}
	return report
}

// Initialize creates the mcp-go server and registers every resource and
// tool. It is called by Start and may be called on its own to inspect the
// resource catalog.
func (s *Server) Initialize(ctx context.Context) error {
	if s.mcpServer != nil {
		return nil
	}

	s.mcpServer = server.NewMCPServer(ServerName, ServerVersion,
		server.WithResourceCapabilities(false, true),
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.registerResources()
	if err := s.registerGuides(ctx); err != nil {
		return fmt.Errorf("failed to register guides: %w", err)
	}
	s.registerTools()

	s.logger.Info("MCP server initialized", "resources", len(s.Resources()))
	return nil
}

// Start preloads the cache, starts background maintenance and serves MCP
// over stdio until stdin reaches EOF or ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Initializing MCP server", "dataDir", s.config.DataDir)

	if err := s.Initialize(ctx); err != nil {
		return err
	}

	s.Preload(ctx)
	s.startBackground(ctx)
	defer s.Stop()

	s.logger.Info("MCP server created, starting stdio communication")

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func (s *Server) startBackground(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopJanitor = s.cache.StartJanitor(s.config.Cache.CleanupInterval)

	if !s.config.WatchData {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.base.Watch(ctx, func(name string) {
			if isGuideChange(name) {
				if err := s.registerGuides(ctx); err != nil {
					s.logger.Warn("Failed to refresh guide resources", "error", err)
				}
			}
		})
		if err != nil {
			s.logger.Error("Data watcher stopped", "error", err)
		}
	}()
}

// Stop gracefully shuts down background work. It is safe to call more
// than once.
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	if s.cancel != nil {
		s.cancel()
	}
	if s.stopJanitor != nil {
		s.stopJanitor()
	}
	s.wg.Wait()
	return nil
}

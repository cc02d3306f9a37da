package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"avaloniamcp/internal/cache"
	"avaloniamcp/internal/knowledge"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names
const (
	ToolLookupControl      = "lookup_control"
	ToolSearchXamlPatterns = "search_xaml_patterns"
	ToolCacheStats         = "cache_stats"
	ToolClearCache         = "clear_cache"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(ToolLookupControl,
			mcp.WithDescription("Look up the documentation of an Avalonia control by name"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Control name, for example Button or DataGrid"),
			),
		),
		s.handleLookupControl,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(ToolSearchXamlPatterns,
			mcp.WithDescription("Search the XAML pattern library by name, category or description"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Text to search for, matched case-insensitively"),
			),
		),
		s.handleSearchXamlPatterns,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(ToolCacheStats,
			mcp.WithDescription("Report resource cache statistics"),
		),
		s.handleCacheStats,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(ToolClearCache,
			mcp.WithDescription("Drop every cached knowledge base document"),
		),
		s.handleClearCache,
	)
}

func (s *Server) handleLookupControl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := s.base.Control(ctx, name)
	if err != nil {
		return s.toolError(ctx, ToolLookupControl, err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearchXamlPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := s.base.SearchPatterns(ctx, query)
	if err != nil {
		return s.toolError(ctx, ToolSearchXamlPatterns, err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleCacheStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatStats(s.cache.Stats(), s.cache.MaxEntries())), nil
}

func (s *Server) handleClearCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := s.cache.Len()
	s.cache.Clear()
	s.logger.Info("Cache cleared by client", "entries", n)
	return mcp.NewToolResultText(fmt.Sprintf("Cleared %d cache entries.", n)), nil
}

// toolError turns a knowledge base error into a message the assistant can act on
func (s *Server) toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	s.logger.Warn("Tool call failed", "tool", tool, "error", err)

	switch {
	case errors.Is(err, knowledge.ErrUnknownControl):
		msg := err.Error()
		if names, nerr := s.base.ControlNames(ctx); nerr == nil && len(names) > 0 {
			msg += ". Available controls: " + strings.Join(names, ", ")
		}
		return mcp.NewToolResultError(msg)
	case errors.Is(err, cache.ErrNotFound):
		return mcp.NewToolResultError("knowledge base file missing: " + err.Error())
	case errors.Is(err, cache.ErrParse):
		return mcp.NewToolResultError("knowledge base file is corrupt: " + err.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

// FormatStats renders cache statistics as plain text.
func FormatStats(stats cache.Stats, maxEntries int) string {
	var sb strings.Builder

	sb.WriteString("Cache statistics\n")
	fmt.Fprintf(&sb, "Entries: %d/%d (%d valid, %d expired)\n",
		stats.TotalEntries, maxEntries, stats.ValidEntries, stats.ExpiredEntries)
	fmt.Fprintf(&sb, "Freshness: %.0f%%\n", stats.FreshnessRatio()*100)
	fmt.Fprintf(&sb, "Hits: %d, misses: %d, hit ratio: %.0f%%\n",
		stats.Hits, stats.Misses, stats.HitRatio()*100)
	fmt.Fprintf(&sb, "Evictions: %d\n", stats.Evictions)
	if stats.TotalEntries > 0 {
		fmt.Fprintf(&sb, "Oldest access: %s ago, newest access: %s ago\n",
			stats.OldestAccess.Round(time.Millisecond), stats.NewestAccess.Round(time.Millisecond))
	}
	if len(stats.Keys) > 0 {
		sb.WriteString("Keys:\n")
		for _, k := range stats.Keys {
			fmt.Fprintf(&sb, "  - %s\n", k)
		}
	}
	return sb.String()
}

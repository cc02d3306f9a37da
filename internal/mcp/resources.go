package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"avaloniamcp/internal/knowledge"

	"github.com/mark3labs/mcp-go/mcp"
)

// Resource URIs
const (
	URIScheme         = "avalonia://"
	ControlsURI       = URIScheme + "controls"
	XamlPatternsURI   = URIScheme + "xaml-patterns"
	MigrationGuideURI = URIScheme + "migration-guide"

	controlPrefix = ControlsURI + "/"
	guidePrefix   = URIScheme + "guides/"

	ControlTemplate = controlPrefix + "{name}"
	GuideTemplate   = guidePrefix + "{name}"

	markdownMIME = "text/markdown"
)

// ErrUnknownResource is returned for URIs no resource is registered for
var ErrUnknownResource = errors.New("unknown resource")

// ResourceInfo describes a registered resource or resource template.
type ResourceInfo struct {
	URI         string
	Name        string
	Description string
	Template    bool
}

func (s *Server) registerResources() {
	s.addResource(ResourceInfo{
		URI:         ControlsURI,
		Name:        "Avalonia Controls Reference",
		Description: "Every documented Avalonia control grouped by category",
	})
	s.addResource(ResourceInfo{
		URI:         XamlPatternsURI,
		Name:        "XAML Patterns",
		Description: "Reusable XAML snippets for common layout, styling and binding tasks",
	})
	s.addResource(ResourceInfo{
		URI:         MigrationGuideURI,
		Name:        "WPF Migration Guide",
		Description: "How WPF concepts and controls map onto Avalonia",
	})

	s.addTemplate(ResourceInfo{
		URI:         ControlTemplate,
		Name:        "Avalonia Control",
		Description: "Properties, events and an example for a single control",
		Template:    true,
	})
	s.addTemplate(ResourceInfo{
		URI:         GuideTemplate,
		Name:        "Avalonia Guide",
		Description: "A markdown guide from the knowledge base",
		Template:    true,
	})
}

// registerGuides adds one static resource per discovered guide.
func (s *Server) registerGuides(ctx context.Context) error {
	guides, err := s.base.Guides(ctx)
	if err != nil {
		return err
	}

	for _, g := range guides {
		name := g.Title
		if name == "" {
			name = g.Name
		}
		s.addResource(ResourceInfo{
			URI:         guidePrefix + g.Name,
			Name:        name,
			Description: g.Description,
		})
	}

	s.logger.Info("Guide resources registered", "count", len(guides))
	return nil
}

func (s *Server) addResource(info ResourceInfo) {
	s.mu.Lock()
	s.catalog[info.URI] = info
	s.mu.Unlock()

	if s.mcpServer == nil {
		return
	}
	s.mcpServer.AddResource(
		mcp.NewResource(info.URI, info.Name,
			mcp.WithResourceDescription(info.Description),
			mcp.WithMIMEType(markdownMIME),
		),
		s.handleReadResource,
	)
}

func (s *Server) addTemplate(info ResourceInfo) {
	s.mu.Lock()
	s.catalog[info.URI] = info
	s.mu.Unlock()

	if s.mcpServer == nil {
		return
	}
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(info.URI, info.Name,
			mcp.WithTemplateDescription(info.Description),
			mcp.WithTemplateMIMEType(markdownMIME),
		),
		s.handleReadResource,
	)
}

// Resources lists the registered resources and templates sorted by URI.
func (s *Server) Resources() []ResourceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]ResourceInfo, 0, len(s.catalog))
	for _, info := range s.catalog {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].URI < list[j].URI })
	return list
}

// ReadResource renders the markdown behind uri.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch {
	case uri == ControlsURI:
		return s.base.ControlsReference(ctx)
	case uri == XamlPatternsURI:
		return s.base.XamlPatterns(ctx)
	case uri == MigrationGuideURI:
		return s.base.MigrationGuide(ctx)
	case strings.HasPrefix(uri, controlPrefix):
		return s.base.Control(ctx, strings.TrimPrefix(uri, controlPrefix))
	case strings.HasPrefix(uri, guidePrefix):
		return s.base.Guide(ctx, strings.TrimPrefix(uri, guidePrefix))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}
}

func (s *Server) handleReadResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	s.logger.Debug("Reading resource", "uri", uri)

	text, err := s.ReadResource(ctx, uri)
	if err != nil {
		s.logger.Warn("Resource read failed", "uri", uri, "error", err)
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: markdownMIME,
			Text:     text,
		},
	}, nil
}

// isGuideChange reports whether a changed data file lives under guides/
func isGuideChange(name string) bool {
	return name == knowledge.GuidesDir || strings.HasPrefix(name, knowledge.GuidesDir+"/")
}

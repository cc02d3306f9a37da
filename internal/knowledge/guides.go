package knowledge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"avaloniamcp/internal/cache"
	"avaloniamcp/pkg/fileops"

	"github.com/adrg/frontmatter"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// guideScanDepth allows one level of topic folders below guides/
	guideScanDepth = 2

	maxDescriptionLength = 500
	maxTitleLength       = 200
)

// Guides lists the markdown guides under the guides directory, sorted by
// path. Files without frontmatter or without a description are skipped. A
// missing guides directory yields an empty list.
func (b *Base) Guides(ctx context.Context) ([]GuideInfo, error) {
	index, err := b.load(ctx, GuidesDir, keyGuides+"index", func(ctx context.Context) (string, error) {
		guides, err := b.scanGuides(ctx)
		if err != nil {
			return "", err
		}
		return json.MarshalToString(guides)
	})
	if err != nil {
		return nil, err
	}

	var guides []GuideInfo
	if err := json.UnmarshalFromString(index, &guides); err != nil {
		return nil, fmt.Errorf("corrupt guide index: %w", err)
	}
	return guides, nil
}

// Guide renders the guide with the given name.
func (b *Base) Guide(ctx context.Context, name string) (string, error) {
	normalized, err := normalize(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownGuide, name)
	}

	return b.load(ctx, GuidesDir, keyGuide+normalized, func(ctx context.Context) (string, error) {
		guides, err := b.Guides(ctx)
		if err != nil {
			return "", err
		}
		for _, info := range guides {
			if info.Name != normalized {
				continue
			}
			_, body, err := b.readGuide(ctx, info.Path)
			if err != nil {
				return "", err
			}
			return renderGuide(info, body), nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnknownGuide, name)
	})
}

func (b *Base) guidesDir() string {
	return filepath.Join(b.dataDir, GuidesDir)
}

func (b *Base) scanGuides(ctx context.Context) ([]GuideInfo, error) {
	files, err := fileops.ScanWithFilter(b.guidesDir(), fileops.IsMarkdownFile, guideScanDepth)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Debug("No guides directory", "path", b.guidesDir())
			return []GuideInfo{}, nil
		}
		return nil, err
	}

	guides := make([]GuideInfo, 0, len(files))
	taken := make(map[string]bool, len(files))
	skipped := 0

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matter, _, err := b.readGuide(ctx, file.Path)
		if err != nil {
			b.logger.Debug("Skipping guide", "path", file.Path, "reason", err)
			skipped++
			continue
		}

		name := uniqueName(guideName(file.Name), taken)
		taken[name] = true

		guides = append(guides, GuideInfo{
			Name:        name,
			Title:       matter.Title,
			Description: matter.Description,
			Tags:        matter.Tags,
			Path:        file.Path,
		})
	}

	b.logger.Info("Guide scan completed", "found", len(files), "valid", len(guides), "skipped", skipped)
	return guides, nil
}

// readGuide validates and parses one guide file given its path relative to
// the guides directory.
func (b *Base) readGuide(ctx context.Context, relPath string) (GuideFrontmatter, string, error) {
	var matter GuideFrontmatter

	if err := ctx.Err(); err != nil {
		return matter, "", err
	}
	if err := fileops.ValidatePathSecurity(relPath); err != nil {
		return matter, "", fmt.Errorf("path security check failed: %w", err)
	}

	path := filepath.Join(b.guidesDir(), filepath.FromSlash(relPath))
	if err := fileops.ValidateFileInDirectory(path, b.guidesDir()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return matter, "", fmt.Errorf("%w: %s", cache.ErrNotFound, path)
		}
		return matter, "", fmt.Errorf("file containment validation failed: %w", err)
	}
	if err := fileops.ValidateFileSizeLimit(path, b.maxFileSize); err != nil {
		return matter, "", fmt.Errorf("file size check failed: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return matter, "", fmt.Errorf("failed to read guide: %w", err)
	}
	if err := fileops.ValidateContentSecurity(string(content)); err != nil {
		return matter, "", fmt.Errorf("content security validation failed: %w", err)
	}

	body, err := frontmatter.Parse(bytes.NewReader(content), &matter)
	if err != nil {
		return matter, "", &cache.ParseError{Path: path, Err: err}
	}
	if err := validateFrontmatter(matter); err != nil {
		return matter, "", fmt.Errorf("invalid frontmatter: %w", err)
	}

	return matter, string(body), nil
}

func validateFrontmatter(matter GuideFrontmatter) error {
	if strings.TrimSpace(matter.Description) == "" {
		return fmt.Errorf("missing required 'description' field")
	}
	if len(matter.Description) > maxDescriptionLength {
		return fmt.Errorf("description too long (max %d characters)", maxDescriptionLength)
	}
	if len(matter.Title) > maxTitleLength {
		return fmt.Errorf("title too long (max %d characters)", maxTitleLength)
	}
	return nil
}

// guideName derives the URI name of a guide from its file name
func guideName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	name, err := normalize(base)
	if err != nil {
		return "guide"
	}
	return name
}

func uniqueName(base string, taken map[string]bool) string {
	name := base
	for i := 1; taken[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	return name
}

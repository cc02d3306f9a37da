package knowledge

import (
	"fmt"
	"sort"
	"strings"
)

func renderControlsReference(data ControlsData) string {
	var sb strings.Builder

	sb.WriteString("# Avalonia Controls Reference\n\n")
	if data.Version != "" {
		fmt.Fprintf(&sb, "Avalonia version: %s\n\n", data.Version)
	}

	byCategory := make(map[string][]Control)
	for _, c := range data.Controls {
		category := c.Category
		if category == "" {
			category = "General"
		}
		byCategory[category] = append(byCategory[category], c)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, c := range byCategory[category] {
			fmt.Fprintf(&sb, "- **%s**", c.Name)
			if c.Description != "" {
				fmt.Fprintf(&sb, ": %s", c.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Total controls: %d\n", len(data.Controls))
	return sb.String()
}

func renderControl(c Control) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", c.Name)
	if c.Namespace != "" {
		fmt.Fprintf(&sb, "**Namespace:** `%s`\n\n", c.Namespace)
	}
	if c.Category != "" {
		fmt.Fprintf(&sb, "**Category:** %s\n\n", c.Category)
	}
	if c.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", c.Description)
	}

	if len(c.Properties) > 0 {
		sb.WriteString("## Properties\n\n")
		sb.WriteString("| Name | Type | Description |\n")
		sb.WriteString("|------|------|-------------|\n")
		for _, p := range c.Properties {
			fmt.Fprintf(&sb, "| %s | `%s` | %s |\n", p.Name, p.Type, p.Description)
		}
		sb.WriteString("\n")
	}

	if len(c.Events) > 0 {
		sb.WriteString("## Events\n\n")
		for _, e := range c.Events {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
		sb.WriteString("\n")
	}

	if c.Example != "" {
		sb.WriteString("## Example\n\n```xml\n")
		sb.WriteString(strings.TrimRight(c.Example, "\n"))
		sb.WriteString("\n```\n\n")
	}

	if c.WPFEquivalent != "" {
		fmt.Fprintf(&sb, "**WPF equivalent:** %s\n", c.WPFEquivalent)
	}

	return sb.String()
}

func renderPatterns(title string, patterns []Pattern) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)
	for _, p := range patterns {
		fmt.Fprintf(&sb, "## %s\n\n", p.Name)
		if p.Category != "" {
			fmt.Fprintf(&sb, "**Category:** %s\n\n", p.Category)
		}
		if p.Description != "" {
			fmt.Fprintf(&sb, "%s\n\n", p.Description)
		}
		if p.Xaml != "" {
			sb.WriteString("```xml\n")
			sb.WriteString(strings.TrimRight(p.Xaml, "\n"))
			sb.WriteString("\n```\n\n")
		}
		for _, n := range p.Notes {
			fmt.Fprintf(&sb, "> %s\n", n)
		}
		if len(p.Notes) > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func renderMigrationGuide(data MigrationData) string {
	var sb strings.Builder

	title := data.Title
	if title == "" {
		title = "WPF to Avalonia Migration Guide"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if data.Overview != "" {
		fmt.Fprintf(&sb, "%s\n\n", data.Overview)
	}

	for _, s := range data.Sections {
		fmt.Fprintf(&sb, "## %s\n\n", s.Title)
		if s.Content != "" {
			fmt.Fprintf(&sb, "%s\n\n", s.Content)
		}
		if s.WPF != "" {
			sb.WriteString("**WPF:**\n\n```xml\n")
			sb.WriteString(strings.TrimRight(s.WPF, "\n"))
			sb.WriteString("\n```\n\n")
		}
		if s.Avalonia != "" {
			sb.WriteString("**Avalonia:**\n\n```xml\n")
			sb.WriteString(strings.TrimRight(s.Avalonia, "\n"))
			sb.WriteString("\n```\n\n")
		}
	}

	if len(data.ControlMappings) > 0 {
		sb.WriteString("## Control Mappings\n\n")
		sb.WriteString("| WPF | Avalonia | Notes |\n")
		sb.WriteString("|-----|----------|-------|\n")
		for _, m := range data.ControlMappings {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", m.WPF, m.Avalonia, m.Notes)
		}
	}

	return sb.String()
}

func renderGuide(info GuideInfo, body string) string {
	var sb strings.Builder

	title := info.Title
	if title == "" {
		title = info.Name
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if info.Description != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", info.Description)
	}
	sb.WriteString(strings.TrimLeft(body, "\n"))
	return sb.String()
}

package knowledge

// Data file names inside the data directory
const (
	ControlsFile       = "controls.json"
	XamlPatternsFile   = "xaml-patterns.json"
	MigrationGuideFile = "migration-guide.json"
	GuidesDir          = "guides"
)

// ControlsData is the layout of controls.json
type ControlsData struct {
	Version  string    `json:"version"`
	Controls []Control `json:"controls"`
}

// Control describes one Avalonia control
type Control struct {
	Name          string     `json:"name"`
	Namespace     string     `json:"namespace"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	Properties    []Property `json:"properties"`
	Events        []string   `json:"events"`
	Example       string     `json:"example"`
	WPFEquivalent string     `json:"wpfEquivalent"`
}

// Property is a styled or direct property of a control
type Property struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// PatternsData is the layout of xaml-patterns.json
type PatternsData struct {
	Patterns []Pattern `json:"patterns"`
}

// Pattern is a reusable XAML snippet
type Pattern struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Xaml        string   `json:"xaml"`
	Notes       []string `json:"notes"`
}

// MigrationData is the layout of migration-guide.json
type MigrationData struct {
	Title           string             `json:"title"`
	Overview        string             `json:"overview"`
	Sections        []MigrationSection `json:"sections"`
	ControlMappings []ControlMapping   `json:"controlMappings"`
}

// MigrationSection covers one topic of the WPF to Avalonia migration
type MigrationSection struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	WPF      string `json:"wpf"`
	Avalonia string `json:"avalonia"`
}

// ControlMapping pairs a WPF control with its Avalonia counterpart
type ControlMapping struct {
	WPF      string `json:"wpf"`
	Avalonia string `json:"avalonia"`
	Notes    string `json:"notes"`
}

// GuideFrontmatter is the YAML frontmatter expected in guide files
type GuideFrontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags,omitempty"`
}

// GuideInfo is a discovered guide without its body
type GuideInfo struct {
	Name        string // sanitized identifier used in URIs and cache keys
	Title       string
	Description string
	Tags        []string
	Path        string // relative to the guides directory
}

package model

// ExportConfig names the output files written after a build. An empty path
// disables that export.
type ExportConfig struct {
	XLSX string `json:"xlsx" yaml:"xlsx"`
	DXF  string `json:"dxf" yaml:"dxf"`
	PDF  string `json:"pdf" yaml:"pdf"`
}

// Any reports whether at least one export is enabled.
func (e ExportConfig) Any() bool {
	return e.XLSX != "" || e.DXF != "" || e.PDF != ""
}

// AppConfig holds application-wide preferences and the default pipeline
// parameters.
type AppConfig struct {
	Contour        ContourSettings  `json:"contour" yaml:"contour"`
	ContourLayers  int              `json:"contour_layers" yaml:"contour_layers"`
	Clearing       ClearingSettings `json:"clearing" yaml:"clearing"`
	EnableClearing bool             `json:"enable_clearing" yaml:"enable_clearing"`

	// Mesh preparation
	CenterMesh  bool `json:"center_mesh" yaml:"center_mesh"`
	ScaleToUnit bool `json:"scale_to_unit" yaml:"scale_to_unit"`

	Tools    []Tool       `json:"tools" yaml:"tools"`
	Export   ExportConfig `json:"export" yaml:"export"`
	LogLevel string       `json:"log_level" yaml:"log_level"` // "debug", "info", "warn", "error"
}

// DefaultAppConfig returns an AppConfig populated with the default pipeline
// values.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Contour:        DefaultContourSettings(),
		ContourLayers:  50,
		Clearing:       DefaultClearingSettings(),
		EnableClearing: true,
		CenterMesh:     true,
		ScaleToUnit:    false,
		Tools:          DefaultToolLibrary().Tools,
		LogLevel:       "info",
	}
}

// ToolLibrary returns a library holding a copy of the configured tools.
func (c AppConfig) ToolLibrary() ToolLibrary {
	lib := ToolLibrary{}
	for _, t := range c.Tools {
		lib.Add(t)
	}
	return lib
}

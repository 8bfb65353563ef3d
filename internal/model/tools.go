package model

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Tool is a cutting tool registered with a job. Position and Direction
// describe its current pose for playback.
type Tool struct {
	ID        int     `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Length    float64 `json:"length" yaml:"length"`
	Diameter  float64 `json:"diameter" yaml:"diameter"`
	Position  r3.Vec  `json:"position" yaml:"position"`
	Direction r3.Vec  `json:"direction" yaml:"direction"`
	Visible   bool    `json:"visible" yaml:"visible"`
}

// NewTool creates a visible tool at the origin pointing down the Z axis.
func NewTool(id int, name string, length, diameter float64) Tool {
	return Tool{
		ID:        id,
		Name:      name,
		Length:    length,
		Diameter:  diameter,
		Direction: r3.Vec{Z: 1},
		Visible:   true,
	}
}

// SetPosition moves the tool tip to p.
func (t *Tool) SetPosition(p r3.Vec) {
	t.Position = p
}

// SetOrientation points the tool along dir. A zero vector leaves the
// orientation unchanged.
func (t *Tool) SetOrientation(dir r3.Vec) {
	if r3.Norm2(dir) == 0 {
		return
	}
	t.Direction = r3.Unit(dir)
}

// ToolLibrary is an ordered registry of tools keyed by integer ID.
type ToolLibrary struct {
	Tools []Tool `json:"tools" yaml:"tools"`
}

// DefaultToolLibrary returns a library holding the single tool used by the
// default pipeline.
func DefaultToolLibrary() ToolLibrary {
	return ToolLibrary{
		Tools: []Tool{
			NewTool(1, "6mm Ball End Mill", 50, 6),
		},
	}
}

// Add registers a tool. A tool with the same ID is replaced.
func (l *ToolLibrary) Add(t Tool) {
	if existing := l.FindToolByID(t.ID); existing != nil {
		*existing = t
		return
	}
	l.Tools = append(l.Tools, t)
}

// Tool returns a copy of the tool with the given ID.
func (l *ToolLibrary) Tool(id int) (Tool, bool) {
	if t := l.FindToolByID(id); t != nil {
		return *t, true
	}
	return Tool{}, false
}

// FindToolByID returns a pointer to the tool with the given ID, or nil.
func (l *ToolLibrary) FindToolByID(id int) *Tool {
	for i := range l.Tools {
		if l.Tools[i].ID == id {
			return &l.Tools[i]
		}
	}
	return nil
}

// ToolNames returns the tool names in registration order.
func (l *ToolLibrary) ToolNames() []string {
	names := make([]string, len(l.Tools))
	for i, t := range l.Tools {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of registered tools.
func (l *ToolLibrary) Len() int {
	return len(l.Tools)
}

// Merge adds the tools of other whose ID is not yet registered and returns
// how many were added.
func (l *ToolLibrary) Merge(other ToolLibrary) int {
	before := l.Len()
	for _, t := range other.Tools {
		if l.FindToolByID(t.ID) == nil {
			l.Tools = append(l.Tools, t)
		}
	}
	return l.Len() - before
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// DesignTemplate is a reusable box preset, e.g. an enclosure with its
// connector cutouts already placed.
type DesignTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Design      Design `json:"design"`
	CreatedAt   string `json:"created_at"`
}

// NewDesignTemplate snapshots a design into a template.
func NewDesignTemplate(name, description string, d Design) DesignTemplate {
	d.Cutouts = copyCutouts(d.Cutouts)
	return DesignTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		Design:      d,
		CreatedAt:   time.Now().Format(time.RFC3339),
	}
}

// ToDesign creates a new design from the template with a fresh ID.
func (t DesignTemplate) ToDesign(name string) Design {
	d := NewDesign(name, t.Design.Width, t.Design.Height, t.Design.Depth,
		t.Design.Thickness, t.Design.Spacing)
	d.Origin = t.Design.Origin
	d.Cutouts = copyCutouts(t.Design.Cutouts)
	return d
}

// TemplateStore holds a collection of design templates.
type TemplateStore struct {
	Templates []DesignTemplate `json:"templates"`
}

func NewTemplateStore() TemplateStore {
	return TemplateStore{Templates: []DesignTemplate{}}
}

// Add appends a template, replacing any template with the same name.
func (ts *TemplateStore) Add(t DesignTemplate) {
	for i := range ts.Templates {
		if ts.Templates[i].Name == t.Name {
			ts.Templates[i] = t
			return
		}
	}
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *DesignTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *DesignTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

func copyCutouts(cs []CutoutSpec) []CutoutSpec {
	if cs == nil {
		return []CutoutSpec{}
	}
	cp := make([]CutoutSpec, len(cs))
	copy(cp, cs)
	return cp
}

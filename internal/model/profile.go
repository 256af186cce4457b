package model

import "fmt"

// MachineProfile defines the dialect of a G-code controller.
type MachineProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"` // "mm" or "inches"
	IsBuiltIn   bool   `json:"is_built_in"`

	// Laser machines fire the beam with SpindleStart and cut each path at
	// full depth; routers step down in passes.
	Laser bool `json:"laser"`

	StartCode    []string `json:"start_code"`
	SpindleStart string   `json:"spindle_start"` // e.g. "M3 S%d"
	SpindleStop  string   `json:"spindle_stop"`
	HomeAll      string   `json:"home_all"`

	AbsoluteMode string `json:"absolute_mode"`
	FeedMode     string `json:"feed_mode"`
	RapidMove    string `json:"rapid_move"`
	FeedMove     string `json:"feed_move"`

	EndCode []string `json:"end_code"` // "[SafeZ]" is replaced by the safe height

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"`

	DecimalPlaces int `json:"decimal_places"`
}

// MachineProfiles are the built-in profiles; Generic is always last.
var MachineProfiles = []MachineProfile{
	{
		Name:          "Grbl Laser",
		Description:   "Grbl 1.1 diode or CO2 laser in dynamic power mode",
		Units:         "mm",
		IsBuiltIn:     true,
		Laser:         true,
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M4 S%d",
		SpindleStop:   "M5",
		HomeAll:       "$H",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"M5", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Grbl Router",
		Description:   "Grbl spindle router",
		Units:         "mm",
		IsBuiltIn:     true,
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "$H",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC router",
		Units:         "mm",
		IsBuiltIn:     true,
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard G-code router",
		Units:         "mm",
		IsBuiltIn:     true,
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// CustomProfiles holds user-defined profiles loaded from disk.
var CustomProfiles []MachineProfile

// AllProfiles returns built-in followed by custom profiles.
func AllProfiles() []MachineProfile {
	out := make([]MachineProfile, 0, len(MachineProfiles)+len(CustomProfiles))
	out = append(out, MachineProfiles...)
	return append(out, CustomProfiles...)
}

// GetProfile returns a profile by name, or Generic if not found.
func GetProfile(name string) MachineProfile {
	for _, p := range AllProfiles() {
		if p.Name == name {
			return p
		}
	}
	return MachineProfiles[len(MachineProfiles)-1]
}

// GetProfileNames returns the names of all available profiles.
func GetProfileNames() []string {
	var names []string
	for _, p := range AllProfiles() {
		names = append(names, p.Name)
	}
	return names
}

func isBuiltInName(name string) bool {
	for _, p := range MachineProfiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

// NewCustomProfile starts a custom profile from the Generic defaults.
func NewCustomProfile(name string) MachineProfile {
	p := MachineProfiles[len(MachineProfiles)-1]
	p.Name = name
	p.Description = "Custom profile"
	p.IsBuiltIn = false
	p.StartCode = append([]string(nil), p.StartCode...)
	p.EndCode = append([]string(nil), p.EndCode...)
	return p
}

// AddCustomProfile adds or replaces a custom profile. Built-in names are
// reserved.
func AddCustomProfile(p MachineProfile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if isBuiltInName(p.Name) {
		return fmt.Errorf("profile %q is built in", p.Name)
	}
	p.IsBuiltIn = false
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == p.Name {
			CustomProfiles[i] = p
			return nil
		}
	}
	CustomProfiles = append(CustomProfiles, p)
	return nil
}

// RemoveCustomProfile deletes a custom profile by name.
func RemoveCustomProfile(name string) error {
	if isBuiltInName(name) {
		return fmt.Errorf("cannot remove built-in profile %q", name)
	}
	for i, p := range CustomProfiles {
		if p.Name == name {
			CustomProfiles = append(CustomProfiles[:i], CustomProfiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("profile %q not found", name)
}

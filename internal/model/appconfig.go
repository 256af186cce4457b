package model

// AppConfig holds application-wide preferences and the defaults applied to
// new designs and outputs.
type AppConfig struct {
	DefaultThickness float64 `json:"default_thickness"`
	DefaultSpacing   float64 `json:"default_spacing"`
	DefaultProfile   string  `json:"default_profile"`
	DefaultScale     float64 `json:"default_scale"`
	DefaultFeedRate  float64 `json:"default_feed_rate"`
	DefaultPassDepth float64 `json:"default_pass_depth"`

	LogLevel      string   `json:"log_level"` // zerolog level name
	RecentDesigns []string `json:"recent_designs"`
}

// maxRecentDesigns bounds the recent designs list.
const maxRecentDesigns = 10

// DefaultAppConfig returns an AppConfig matching DefaultOutputSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultOutputSettings()
	return AppConfig{
		DefaultThickness: 3.0,
		DefaultSpacing:   2.0,
		DefaultProfile:   defaults.Profile,
		DefaultScale:     defaults.Scale,
		DefaultFeedRate:  defaults.FeedRate,
		DefaultPassDepth: defaults.PassDepth,
		LogLevel:         "info",
		RecentDesigns:    []string{},
	}
}

// ApplyToSettings copies the configured defaults into s. The cut depth
// follows the material thickness.
func (c AppConfig) ApplyToSettings(s *OutputSettings) {
	s.Profile = c.DefaultProfile
	s.Scale = c.DefaultScale
	s.FeedRate = c.DefaultFeedRate
	s.PassDepth = c.DefaultPassDepth
	s.CutDepth = c.DefaultThickness
}

// AddRecent moves path to the front of the recent designs list.
func (c *AppConfig) AddRecent(path string) {
	list := []string{path}
	for _, p := range c.RecentDesigns {
		if p != path {
			list = append(list, p)
		}
	}
	if len(list) > maxRecentDesigns {
		list = list[:maxRecentDesigns]
	}
	c.RecentDesigns = list
}

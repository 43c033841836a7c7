package config

import "sort"

// Presets override the layout section of DefaultConfig.
var Presets = map[string]func(*LayoutConfig){
	"default": func(*LayoutConfig) {},
	"fast": func(l *LayoutConfig) {
		l.Theta = 1.2
		l.StableThreshold = 0.05
	},
	"precise": func(l *LayoutConfig) {
		l.Theta = 0.3
		l.StableThreshold = 0.001
		l.TimeStep = 10
	},
	"3d": func(l *LayoutConfig) {
		l.Dimensions = 3
	},
	"tight": func(l *LayoutConfig) {
		l.SpringLength = 10
		l.SpringCoeff = 0.002
		l.Gravity = -0.6
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(&cfg.Layout)
	return cfg
}

// Apply overlays the named preset onto c. It reports false for unknown
// names.
func (c *Config) Apply(name string) bool {
	apply, ok := Presets[name]
	if ok {
		apply(&c.Layout)
	}
	return ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

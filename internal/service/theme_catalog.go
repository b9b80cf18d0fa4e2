package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"intervals/backend/internal/model"
	"intervals/backend/internal/repository"
)

const ThemeKey = "theme"

var builtinThemes = []model.Theme{
	{
		ID:     "default-dark",
		Name:   "Default Dark",
		IsDark: true,
		Colors: model.ThemeColors{
			Primary:    "#007AFF",
			Secondary:  "#5856D6",
			Accent:     "#FF9500",
			Background: model.ThemeBackground{Primary: "#1a1a1a", Secondary: "#2a2a2a"},
			Text:       model.ThemeText{Primary: "#FFFFFF", Secondary: "#999999"},
			Timer: model.ThemeTimer{
				Focus:      "#4A90E2",
				ShortBreak: "#50E3C2",
				LongBreak:  "#FF9500",
				Custom:     []string{"#FF3B30", "#5856D6", "#FF2D55", "#64D2FF", "#FFCC00"},
			},
		},
	},
	{
		ID:     "ocean-breeze",
		Name:   "Ocean Breeze",
		IsDark: true,
		Colors: model.ThemeColors{
			Primary:    "#00B4D8",
			Secondary:  "#48CAE4",
			Accent:     "#90E0EF",
			Background: model.ThemeBackground{Primary: "#03045E", Secondary: "#023E8A"},
			Text:       model.ThemeText{Primary: "#FFFFFF", Secondary: "#CAF0F8"},
			Timer: model.ThemeTimer{
				Focus:      "#00B4D8",
				ShortBreak: "#90E0EF",
				LongBreak:  "#48CAE4",
				Custom:     []string{"#0077B6", "#90E0EF", "#00B4D8", "#CAF0F8", "#023E8A"},
			},
		},
	},
	{
		ID:     "forest-light",
		Name:   "Forest Light",
		IsDark: false,
		Colors: model.ThemeColors{
			Primary:    "#2D6A4F",
			Secondary:  "#40916C",
			Accent:     "#74C69D",
			Background: model.ThemeBackground{Primary: "#F0FFF4", Secondary: "#D8F3DC"},
			Text:       model.ThemeText{Primary: "#1B4332", Secondary: "#2D6A4F"},
			Timer: model.ThemeTimer{
				Focus:      "#2D6A4F",
				ShortBreak: "#40916C",
				LongBreak:  "#74C69D",
				Custom:     []string{"#1B4332", "#95D5B2", "#2D6A4F", "#74C69D", "#40916C"},
			},
		},
	},
	{
		ID:     "sunset-vibes",
		Name:   "Sunset Vibes",
		IsDark: true,
		Colors: model.ThemeColors{
			Primary:    "#F72585",
			Secondary:  "#7209B7",
			Accent:     "#4CC9F0",
			Background: model.ThemeBackground{Primary: "#3A0CA3", Secondary: "#4361EE"},
			Text:       model.ThemeText{Primary: "#FFFFFF", Secondary: "#B5179E"},
			Timer: model.ThemeTimer{
				Focus:      "#F72585",
				ShortBreak: "#7209B7",
				LongBreak:  "#4361EE",
				Custom:     []string{"#F72585", "#4CC9F0", "#7209B7", "#4361EE", "#B5179E"},
			},
		},
	},
	{
		ID:     "minimal-light",
		Name:   "Minimal Light",
		IsDark: false,
		Colors: model.ThemeColors{
			Primary:    "#2B2D42",
			Secondary:  "#8D99AE",
			Accent:     "#EF233C",
			Background: model.ThemeBackground{Primary: "#EDF2F4", Secondary: "#FFFFFF"},
			Text:       model.ThemeText{Primary: "#2B2D42", Secondary: "#8D99AE"},
			Timer: model.ThemeTimer{
				Focus:      "#2B2D42",
				ShortBreak: "#8D99AE",
				LongBreak:  "#EF233C",
				Custom:     []string{"#2B2D42", "#8D99AE", "#EF233C", "#D90429", "#A9A9A9"},
			},
		},
	},
}

// ThemeCatalog serves the built-in palettes and the persisted selection.
type ThemeCatalog struct {
	mu        sync.RWMutex
	kv        KeyValueStore
	persister *Persister
	current   model.Theme
}

func NewThemeCatalog(kv KeyValueStore, persister *Persister) *ThemeCatalog {
	return &ThemeCatalog{
		kv:        kv,
		persister: persister,
		current:   builtinThemes[0],
	}
}

// Load restores the saved selection; a missing or unknown id means the default.
func (c *ThemeCatalog) Load(ctx context.Context) error {
	raw, err := c.kv.Get(ctx, ThemeKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	c.mu.Lock()
	c.current = resolveTheme(strings.TrimSpace(string(raw)))
	c.mu.Unlock()
	return nil
}

func (c *ThemeCatalog) Themes() []model.Theme {
	themes := make([]model.Theme, len(builtinThemes))
	copy(themes, builtinThemes)
	return themes
}

func (c *ThemeCatalog) Find(id string) (model.Theme, bool) {
	for _, theme := range builtinThemes {
		if theme.ID == id {
			return theme, true
		}
	}
	return model.Theme{}, false
}

func (c *ThemeCatalog) Current() model.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetTheme selects id, falling back to the default theme for unknown ids.
// The requested id is what gets persisted.
func (c *ThemeCatalog) SetTheme(id string) (model.Theme, *SaveResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = resolveTheme(id)
	return c.current, c.persister.Save(ThemeKey, []byte(id))
}

// CustomColor returns the current theme's ramp color for a segment position.
func (c *ThemeCatalog) CustomColor(position int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ramp := c.current.Colors.Timer.Custom
	if len(ramp) == 0 || position < 0 {
		return c.current.Colors.Timer.Focus
	}
	return ramp[position%len(ramp)]
}

func resolveTheme(id string) model.Theme {
	for _, theme := range builtinThemes {
		if theme.ID == id {
			return theme
		}
	}
	return builtinThemes[0]
}

package model

type ThemeBackground struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

type ThemeText struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// ThemeTimer holds segment colors; Custom is the per-position intensity ramp.
type ThemeTimer struct {
	Focus      string   `json:"focus"`
	ShortBreak string   `json:"shortBreak"`
	LongBreak  string   `json:"longBreak"`
	Custom     []string `json:"custom"`
}

type ThemeColors struct {
	Primary    string          `json:"primary"`
	Secondary  string          `json:"secondary"`
	Accent     string          `json:"accent"`
	Background ThemeBackground `json:"background"`
	Text       ThemeText       `json:"text"`
	Timer      ThemeTimer      `json:"timer"`
}

type Theme struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	IsDark bool        `json:"isDark"`
	Colors ThemeColors `json:"colors"`
}

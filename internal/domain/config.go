package domain

import (
	"github.com/pelletier/go-toml/v2"
)

// GuildConfig is the declarative per-guild setup, parsed from a TOML
// document the operators point us at. Every section is optional; an empty
// document is a valid (if useless) config.
type GuildConfig struct {
	Lobby      *LobbyConfig `toml:"lobby"`
	Roles      *RolesConfig `toml:"roles"`
	LogChannel string       `toml:"log_channel"`
}

type LobbyConfig struct {
	Channel        string `toml:"channel"`
	ClickForRules  bool   `toml:"click_for_rules"`
	KickAfterDays  int    `toml:"kick_after_days"`
	Role           string `toml:"role"`
	Rules          string `toml:"rules"`
	WelcomeMessage string `toml:"welcome_message"`
}

type RolesConfig struct {
	Channel string     `toml:"channel"`
	Menu    []RoleMenu `toml:"menu"`
}

type RoleMenu struct {
	Name        string           `toml:"name"`
	Single      bool             `toml:"single"`
	Description string           `toml:"description"`
	Options     []RoleMenuOption `toml:"options"`
}

// RoleMenuOption references a role and an emoji by name. Whether those
// names actually exist on the guild is only known at reconcile time.
type RoleMenuOption struct {
	Role        string `toml:"role"`
	Emoji       string `toml:"emoji"`
	Description string `toml:"description"`
}

// ConfigParseError wraps any structural/type failure from the TOML
// decoder. A parse error aborts the whole reconfiguration.
type ConfigParseError struct {
	Err error
}

func (e *ConfigParseError) Error() string { return "config parse: " + e.Err.Error() }
func (e *ConfigParseError) Unwrap() error { return e.Err }

func ParseConfig(text string) (*GuildConfig, error) {
	var cfg GuildConfig
	if err := toml.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, &ConfigParseError{Err: err}
	}
	return &cfg, nil
}

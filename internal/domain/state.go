package domain

import (
	"fmt"
	"strings"
	"time"
)

type EmojiKind string

const (
	EmojiUnicode EmojiKind = "unicode"
	EmojiCustom  EmojiKind = "custom"
)

// EmojiIdentity distinguishes a guild custom emoji (by name) from a stock
// unicode emoji (by its codepoint sequence). It is comparable and is used
// uniformly as a map key.
type EmojiIdentity struct {
	Kind EmojiKind `json:"kind"`
	Name string    `json:"name"`
}

func (e EmojiIdentity) String() string { return string(e.Kind) + ":" + e.Name }

// MenuKey is the composite (message id, emoji) key of the role-emoji map.
// It implements encoding.TextMarshaler/TextUnmarshaler so the map survives
// a JSON round trip with the composite key intact.
type MenuKey struct {
	MessageID string
	Emoji     EmojiIdentity
}

func (k MenuKey) MarshalText() ([]byte, error) {
	if strings.Contains(k.MessageID, "|") || strings.ContainsRune(string(k.Emoji.Kind), '|') {
		return nil, fmt.Errorf("menu key contains separator: %q", k.MessageID)
	}
	return []byte(k.MessageID + "|" + string(k.Emoji.Kind) + "|" + k.Emoji.Name), nil
}

func (k *MenuKey) UnmarshalText(b []byte) error {
	parts := strings.SplitN(string(b), "|", 3)
	if len(parts) != 3 {
		return fmt.Errorf("malformed menu key: %q", string(b))
	}
	switch EmojiKind(parts[1]) {
	case EmojiUnicode, EmojiCustom:
	default:
		return fmt.Errorf("menu key has unknown emoji kind: %q", parts[1])
	}
	k.MessageID = parts[0]
	k.Emoji = EmojiIdentity{Kind: EmojiKind(parts[1]), Name: parts[2]}
	return nil
}

// RoleMenuOptionState is the mutation intent behind one reaction: the role
// the reaction grants, and (for single-choice menus) the sibling roles an
// add-click sweeps away.
type RoleMenuOptionState struct {
	AddRoleID     string   `json:"add_role_id"`
	RemoveRoleIDs []string `json:"remove_role_ids"`
}

// GuildState is everything the bot has materialized for one guild. It is
// rebuilt from scratch on every successful reconfiguration and replaced
// wholesale; event handlers only ever read it.
type GuildState struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	ConfigURL       string    `json:"config_url"`
	ConfigFetchedAt time.Time `json:"config_fetched_at"`

	LobbyRoleID         string `json:"lobby_role_id,omitempty"`
	LobbyWelcome        string `json:"lobby_welcome_message,omitempty"`
	LobbyChannelID      string `json:"lobby_channel_id,omitempty"`
	LobbyClickForRules  bool   `json:"lobby_click_for_rules,omitempty"`
	LobbyKickDays       int    `json:"lobby_kick_days,omitempty"`
	LobbyRules          string `json:"lobby_rules,omitempty"`
	LobbyRulesMessageID string `json:"lobby_rules_message_id,omitempty"`

	RoleChannelID string `json:"role_channel_id,omitempty"`
	// Keyed by (message id, emoji). Only ever holds keys for messages sent
	// by the reconciliation run that built this state.
	RoleEmojis map[MenuKey]RoleMenuOptionState `json:"role_emojis"`
	// Denormalized id->name snapshot, used only to make error reports
	// readable. Not authoritative.
	RoleNames map[string]string `json:"role_names"`

	LogChannelID string `json:"log_channel_id,omitempty"`
}

func NewGuildState(guildID, guildName, configURL string, fetchedAt time.Time) *GuildState {
	return &GuildState{
		ID:              guildID,
		Name:            guildName,
		ConfigURL:       configURL,
		ConfigFetchedAt: fetchedAt,
		RoleEmojis:      map[MenuKey]RoleMenuOptionState{},
		RoleNames:       map[string]string{},
	}
}

// RoleName returns the cached display name for a role id, falling back to
// the raw id when the snapshot has no entry.
func (s *GuildState) RoleName(roleID string) string {
	if n, ok := s.RoleNames[roleID]; ok && n != "" {
		return n
	}
	return roleID
}

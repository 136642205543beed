package service

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	emojidb "github.com/kyokomi/emoji/v2"

	"github.com/dragonpaw/ashbot/internal/domain"
)

// ResolvedEmoji is an emoji reference that actually exists: its map-key
// identity, the value the reaction API wants, and the inline form for
// embed text.
type ResolvedEmoji struct {
	Identity domain.EmojiIdentity
	API      string
	Mention  string
}

// resolved is a one-shot snapshot of the guild's roles and emoji. It is
// rebuilt for every reconciliation; roles and emoji drift between runs.
type resolved struct {
	roles     map[string]string // role name -> role id
	roleNames map[string]string // role id -> role name
	emojis    map[string]ResolvedEmoji
}

func snapshotGuild(d Discord, guildID string, opts ...discordgo.RequestOption) (*resolved, error) {
	roles, err := d.GuildRoles(guildID, opts...)
	if err != nil {
		return nil, err
	}
	res := &resolved{
		roles:     make(map[string]string, len(roles)),
		roleNames: make(map[string]string, len(roles)),
	}
	for _, r := range roles {
		res.roles[r.Name] = r.ID
		res.roleNames[r.ID] = r.Name
	}

	res.emojis, err = resolveEmojis(d, guildID, opts...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// resolveEmojis merges the stock unicode alias table with the guild's
// custom emoji. Custom emoji win name collisions.
func resolveEmojis(d Discord, guildID string, opts ...discordgo.RequestOption) (map[string]ResolvedEmoji, error) {
	out := map[string]ResolvedEmoji{}
	for alias, glyph := range emojidb.CodeMap() {
		out[strings.Trim(alias, ":")] = ResolvedEmoji{
			Identity: domain.EmojiIdentity{Kind: domain.EmojiUnicode, Name: glyph},
			API:      glyph,
			Mention:  glyph,
		}
	}

	customs, err := d.GuildEmojis(guildID, opts...)
	if err != nil {
		return nil, err
	}
	for _, e := range customs {
		out[e.Name] = ResolvedEmoji{
			Identity: domain.EmojiIdentity{Kind: domain.EmojiCustom, Name: e.Name},
			API:      e.APIName(),
			Mention:  e.MessageFormat(),
		}
	}
	return out, nil
}

// resolveChannel maps a channel name to its id. Not-found is a value, not
// an error; a misspelled channel shouldn't abort the rest of a reconfigure.
func resolveChannel(d Discord, guildID, name string, opts ...discordgo.RequestOption) (string, bool, error) {
	channels, err := d.GuildChannels(guildID, opts...)
	if err != nil {
		return "", false, err
	}
	for _, ch := range channels {
		if ch.Name == name {
			return ch.ID, true, nil
		}
	}
	return "", false, nil
}

// EmojiIdentityOf maps a gateway emoji payload to its map-key identity.
// Custom emoji carry an id; unicode emoji are just their glyph.
func EmojiIdentityOf(e *discordgo.Emoji) domain.EmojiIdentity {
	if e.ID != "" {
		return domain.EmojiIdentity{Kind: domain.EmojiCustom, Name: e.Name}
	}
	return domain.EmojiIdentity{Kind: domain.EmojiUnicode, Name: e.Name}
}

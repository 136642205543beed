package service

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/dragonpaw/ashbot/internal/domain"
)

// Discord is the slice of *discordgo.Session the services actually use.
// Keeping it narrow lets the reconciler and the event handlers run against
// a fake in tests.
type Discord interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildEmojis(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Emoji, error)

	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error

	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Implemented by internal/infra/storage.StateRepo.
type StateRepo interface {
	Get(ctx context.Context, guildID string) (domain.GuildState, error)
	Put(ctx context.Context, st domain.GuildState) error
}

// ConfigFetcher is implemented by internal/adapters/confsource.Client.
type ConfigFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

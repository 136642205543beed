package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/dragonpaw/ashbot/internal/domain"
	"github.com/dragonpaw/ashbot/internal/infra/storage"
)

const testSelfID = "bot-1"

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type sentMessage struct {
	ID        string
	ChannelID string
	Data      *discordgo.MessageSend
}

type reactionCall struct {
	ChannelID string
	MessageID string
	EmojiID   string
}

// fakeDiscord records every call the services make and keeps a live
// per-channel message history so reconciliation cleanup is observable.
type fakeDiscord struct {
	mu sync.Mutex

	guild    *discordgo.Guild
	roles    []*discordgo.Role
	channels []*discordgo.Channel
	emojis   []*discordgo.Emoji

	history map[string][]*discordgo.Message
	nextID  int

	sent      []sentMessage
	deleted   []string
	reactions []reactionCall
	// Role grants and revokes in issue order, as "add:<id>"/"remove:<id>".
	mutations []string

	failRoleAdd    map[string]error
	failRoleRemove map[string]error
	failSend       map[string]error
	failHistory    map[string]error
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		guild:          &discordgo.Guild{ID: "g1", Name: "Testers"},
		history:        map[string][]*discordgo.Message{},
		failRoleAdd:    map[string]error{},
		failRoleRemove: map[string]error{},
		failSend:       map[string]error{},
		failHistory:    map[string]error{},
	}
}

func (f *fakeDiscord) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return f.guild, nil
}

func (f *fakeDiscord) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeDiscord) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeDiscord) GuildEmojis(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Emoji, error) {
	return f.emojis, nil
}

func (f *fakeDiscord) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failHistory[channelID]; ok {
		return nil, err
	}
	msgs := f.history[channelID]
	if beforeID != "" {
		for i, m := range msgs {
			if m.ID == beforeID {
				msgs = msgs[i+1:]
				break
			}
		}
	}
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	out := make([]*discordgo.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeDiscord) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	msgs := f.history[channelID]
	for i, m := range msgs {
		if m.ID == messageID {
			f.history[channelID] = append(msgs[:i:i], msgs[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDiscord) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failSend[channelID]; ok {
		return nil, err
	}
	f.nextID++
	msg := &discordgo.Message{
		ID:        fmt.Sprintf("m%d", f.nextID),
		ChannelID: channelID,
		Author:    &discordgo.User{ID: testSelfID},
	}
	// Newest first, like the real history endpoint.
	f.history[channelID] = append([]*discordgo.Message{msg}, f.history[channelID]...)
	f.sent = append(f.sent, sentMessage{ID: msg.ID, ChannelID: channelID, Data: data})
	return msg, nil
}

func (f *fakeDiscord) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, reactionCall{ChannelID: channelID, MessageID: messageID, EmojiID: emojiID})
	return nil
}

func (f *fakeDiscord) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, "add:"+roleID)
	return f.failRoleAdd[roleID]
}

func (f *fakeDiscord) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, "remove:"+roleID)
	return f.failRoleRemove[roleID]
}

// seedMessage plants a pre-existing message in a channel's history.
func (f *fakeDiscord) seedMessage(channelID, messageID, authorID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := &discordgo.Message{ID: messageID, ChannelID: channelID, Author: &discordgo.User{ID: authorID}}
	f.history[channelID] = append([]*discordgo.Message{msg}, f.history[channelID]...)
}

func (f *fakeDiscord) sentTo(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

// reports returns the descriptions of every error-report embed posted to
// the channel.
func (f *fakeDiscord) reports(channelID string) []string {
	var out []string
	for _, m := range f.sentTo(channelID) {
		for _, e := range m.Data.Embeds {
			if strings.Contains(e.Title, "Oh Snap") {
				out = append(out, e.Description)
			}
		}
	}
	return out
}

// memRepo is an in-memory StateRepo.
type memRepo struct {
	mu     sync.Mutex
	m      map[string]domain.GuildState
	putErr error
}

func newMemRepo() *memRepo { return &memRepo{m: map[string]domain.GuildState{}} }

func (r *memRepo) Get(_ context.Context, guildID string) (domain.GuildState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.m[guildID]
	if !ok {
		return domain.GuildState{}, storage.ErrNotFound
	}
	return st, nil
}

func (r *memRepo) Put(_ context.Context, st domain.GuildState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.m[st.ID] = st
	return nil
}

type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

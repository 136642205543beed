package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragonpaw/ashbot/internal/domain"
)

const colorMenuTOML = `
log_channel = "log"

[roles]
channel = "roles"

[[roles.menu]]
name = "Color"
single = true

[[roles.menu.options]]
role = "Red"
emoji = "red_circle"
description = "x"

[[roles.menu.options]]
role = "Blue"
emoji = "blue_circle"
description = "y"
`

func newTestSetup(text string) (*fakeDiscord, *StateStore, *SetupService) {
	f := newFakeDiscord()
	f.roles = []*discordgo.Role{
		{ID: "r-red", Name: "Red"},
		{ID: "r-blue", Name: "Blue"},
		{ID: "r-lobby", Name: "Lobby"},
	}
	f.channels = []*discordgo.Channel{
		{ID: "c-roles", Name: "roles"},
		{ID: "c-log", Name: "log"},
		{ID: "c-lobby", Name: "lobby"},
	}
	f.emojis = []*discordgo.Emoji{
		{ID: "e1", Name: "red_circle"},
		{ID: "e2", Name: "blue_circle"},
	}
	store := NewStateStore(newMemRepo())
	reporter := NewReporter(f, store)
	svc := NewSetupService(f, &fakeFetcher{text: text}, store, reporter, testSelfID)
	return f, store, svc
}

func TestConfigureBuildsMenuAndMapping(t *testing.T) {
	f, store, svc := newTestSetup(colorMenuTOML)

	require.NoError(t, svc.Configure(context.Background(), "g1", "http://example.com/c.toml"))

	sent := f.sentTo("c-roles")
	require.Len(t, sent, 2) // the menu plus the trailing note

	menu := sent[0]
	require.Len(t, menu.Data.Embeds, 1)
	embed := menu.Data.Embeds[0]
	assert.Equal(t, "Color (Pick 1)", embed.Title)
	assert.Contains(t, embed.Description, "only pick a single option")
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Red", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "<:red_circle:e1>")

	note := sent[1]
	assert.Contains(t, note.Data.Content, "Using role menus")

	// Seed reactions in option order.
	require.Len(t, f.reactions, 2)
	assert.Equal(t, "red_circle:e1", f.reactions[0].EmojiID)
	assert.Equal(t, "blue_circle:e2", f.reactions[1].EmojiID)
	assert.Equal(t, menu.ID, f.reactions[0].MessageID)

	st, ok := store.Get(context.Background(), "g1")
	require.True(t, ok)
	assert.Equal(t, "c-roles", st.RoleChannelID)
	assert.Equal(t, "c-log", st.LogChannelID)
	require.Len(t, st.RoleEmojis, 2)

	red := st.RoleEmojis[domain.MenuKey{
		MessageID: menu.ID,
		Emoji:     domain.EmojiIdentity{Kind: domain.EmojiCustom, Name: "red_circle"},
	}]
	assert.Equal(t, "r-red", red.AddRoleID)
	assert.Equal(t, []string{"r-blue"}, red.RemoveRoleIDs)

	blue := st.RoleEmojis[domain.MenuKey{
		MessageID: menu.ID,
		Emoji:     domain.EmojiIdentity{Kind: domain.EmojiCustom, Name: "blue_circle"},
	}]
	assert.Equal(t, "r-blue", blue.AddRoleID)
	assert.Equal(t, []string{"r-red"}, blue.RemoveRoleIDs)

	assert.Empty(t, f.reports("c-log"))
}

func TestConfigureMissingRoleIsPartial(t *testing.T) {
	f, store, svc := newTestSetup(colorMenuTOML)
	f.roles = []*discordgo.Role{{ID: "r-red", Name: "Red"}} // no Blue on this guild

	require.NoError(t, svc.Configure(context.Background(), "g1", "http://example.com/c.toml"))

	sent := f.sentTo("c-roles")
	require.Len(t, sent, 2)
	require.Len(t, sent[0].Data.Embeds[0].Fields, 1)
	assert.Equal(t, "Red", sent[0].Data.Embeds[0].Fields[0].Name)
	assert.Len(t, f.reactions, 1)

	st, ok := store.Get(context.Background(), "g1")
	require.True(t, ok)
	require.Len(t, st.RoleEmojis, 1)
	red := st.RoleEmojis[domain.MenuKey{
		MessageID: sent[0].ID,
		Emoji:     domain.EmojiIdentity{Kind: domain.EmojiCustom, Name: "red_circle"},
	}]
	assert.Equal(t, "r-red", red.AddRoleID)
	// Only one resolved option, so there is nothing to sweep.
	assert.Empty(t, red.RemoveRoleIDs)

	reports := f.reports("c-log")
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0], "Role 'Blue'")
}

func TestConfigureIsIdempotent(t *testing.T) {
	f, store, svc := newTestSetup(colorMenuTOML)
	f.seedMessage("c-roles", "old-1", testSelfID)
	f.seedMessage("c-roles", "old-2", testSelfID)
	f.seedMessage("c-roles", "user-1", "someone-else")

	require.NoError(t, svc.Configure(context.Background(), "g1", "http://example.com/c.toml"))
	firstRun := f.sentTo("c-roles")
	require.NoError(t, svc.Configure(context.Background(), "g1", "http://example.com/c.toml"))

	// Seeded bot messages and everything from the first run got wiped.
	assert.Contains(t, f.deleted, "old-1")
	assert.Contains(t, f.deleted, "old-2")
	assert.NotContains(t, f.deleted, "user-1")
	for _, m := range firstRun {
		assert.Contains(t, f.deleted, m.ID)
	}

	// Channel content is identical to a single run: one menu, one note,
	// plus the untouched user message.
	var bot, other int
	for _, m := range f.history["c-roles"] {
		if m.Author.ID == testSelfID {
			bot++
		} else {
			other++
		}
	}
	assert.Equal(t, 2, bot)
	assert.Equal(t, 1, other)

	// No stale keys survive the replacement.
	st, ok := store.Get(context.Background(), "g1")
	require.True(t, ok)
	require.Len(t, st.RoleEmojis, 2)
	live := map[string]bool{}
	for _, m := range f.history["c-roles"] {
		live[m.ID] = true
	}
	for k := range st.RoleEmojis {
		assert.True(t, live[k.MessageID], "mapping points at deleted message %s", k.MessageID)
	}
}

func TestConfigureCleanupFailureSkipsChannelCommit(t *testing.T) {
	f, store, svc := newTestSetup(colorMenuTOML)
	f.failHistory["c-roles"] = errors.New("403 missing access")

	require.NoError(t, svc.Configure(context.Background(), "g1", "http://example.com/c.toml"))

	st, ok := store.Get(context.Background(), "g1")
	require.True(t, ok)
	assert.Empty(t, st.RoleChannelID, "channel id is only committed after the wipe succeeds")
	assert.Empty(t, st.RoleEmojis)
	assert.Empty(t, f.sentTo("c-roles"))

	reports := f.reports("c-log")
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0], "Unable to clear the old role menus")
}

func TestConfigureEmptyMenuList(t *testing.T) {
	f, store, svc := newTestSetup(`
log_channel = "log"

[roles]
channel = "roles"
`)

	require.NoError(t, svc.Configure(context.Background(), "g1", "http://example.com/c.toml"))

	assert.Empty(t, f.sentTo("c-roles"))
	reports := f.reports("c-log")
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0], "no role menus")

	st, ok := store.Get(context.Background(), "g1")
	require.True(t, ok)
	assert.Empty(t, st.RoleEmojis)
}

func TestConfigureRoleChannelMissingOtherFeaturesProceed(t *testing.T) {
	f, store, svc := newTestSetup(`
log_channel = "log"

[lobby]
channel = "lobby"
role = "Lobby"

[roles]
channel = "nope"

[[roles.menu]]
name = "Color"

[[roles.menu.options]]
role = "Red"
emoji = "red_circle"
description = "x"
`)

	require.NoError(t, svc.Configure(context.Background(), "g1", "http://example.com/c.toml"))

	st, ok := store.Get(context.Background(), "g1")
	require.True(t, ok)
	assert.Empty(t, st.RoleChannelID)
	assert.Empty(t, st.RoleEmojis)
	// The lobby still got set up.
	assert.Equal(t, "c-lobby", st.LobbyChannelID)
	assert.Equal(t, "r-lobby", st.LobbyRoleID)

	reports := f.reports("c-log")
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0], "Role channel 'nope'")
}

func TestConfigureParseErrorAbortsEverything(t *testing.T) {
	_, store, svc := newTestSetup("this is not [ valid toml")

	err := svc.Configure(context.Background(), "g1", "http://example.com/c.toml")
	require.Error(t, err)
	var parseErr *domain.ConfigParseError
	assert.ErrorAs(t, err, &parseErr)

	_, ok := store.Get(context.Background(), "g1")
	assert.False(t, ok, "no partial state may be committed on a parse error")
}

package service

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/dragonpaw/ashbot/internal/domain"
)

// ReactionService routes live reaction events against the guild's
// (message, emoji) -> role-intent map. It is stateless; every event stands
// alone. Reactions that don't match the map are noise, not errors: any
// reaction anywhere in the guild lands here.
type ReactionService struct {
	d        Discord
	store    *StateStore
	reporter *Reporter
	selfID   string
}

func NewReactionService(d Discord, store *StateStore, reporter *Reporter, selfID string) *ReactionService {
	return &ReactionService{d: d, store: store, reporter: reporter, selfID: selfID}
}

// OnReactionAdd grants the option's role, then sweeps the sibling roles of
// a single-choice menu. The add is attempted first and to completion; the
// removals run regardless of its outcome, and each failure is reported on
// its own.
func (s *ReactionService) OnReactionAdd(ctx context.Context, guildID, messageID, userID string, em domain.EmojiIdentity) {
	if userID == s.selfID {
		// Our own seeded reactions.
		return
	}
	st, ok := s.store.Get(ctx, guildID)
	if !ok {
		log.Printf("reaction add on an unconfigured guild: %s", guildID)
		return
	}
	todo, ok := st.RoleEmojis[domain.MenuKey{MessageID: messageID, Emoji: em}]
	if !ok {
		return
	}

	log.Printf("G=%s U=%s adding role %s, removing %d role(s)",
		st.Name, userID, st.RoleName(todo.AddRoleID), len(todo.RemoveRoleIDs))

	err := s.d.GuildMemberRoleAdd(guildID, userID, todo.AddRoleID,
		discordgo.WithAuditLogReason("Member clicked on role menu"), discordgo.WithContext(ctx))
	if err != nil {
		s.reporter.Report(ctx, guildID, fmt.Sprintf(
			"Unable to add role: **%s**, please check my permissions relative to that role.",
			st.RoleName(todo.AddRoleID)))
	}

	for _, roleID := range todo.RemoveRoleIDs {
		err := s.d.GuildMemberRoleRemove(guildID, userID, roleID,
			discordgo.WithAuditLogReason("Member clicked on role menu"), discordgo.WithContext(ctx))
		if err != nil {
			s.reporter.Report(ctx, guildID, fmt.Sprintf(
				"Unable to remove role: **%s**, please check my permissions relative to that role.",
				st.RoleName(roleID)))
		}
	}
}

// OnReactionRemove revokes only the option's own role. The remove set is
// an add-time exclusivity sweep; un-clicking must not touch it.
func (s *ReactionService) OnReactionRemove(ctx context.Context, guildID, messageID, userID string, em domain.EmojiIdentity) {
	if userID == s.selfID {
		return
	}
	st, ok := s.store.Get(ctx, guildID)
	if !ok {
		log.Printf("reaction remove on an unconfigured guild: %s", guildID)
		return
	}
	todo, ok := st.RoleEmojis[domain.MenuKey{MessageID: messageID, Emoji: em}]
	if !ok {
		return
	}

	log.Printf("G=%s U=%s role removed: %s", st.Name, userID, st.RoleName(todo.AddRoleID))
	err := s.d.GuildMemberRoleRemove(guildID, userID, todo.AddRoleID,
		discordgo.WithAuditLogReason("Member un-clicked the role menu"), discordgo.WithContext(ctx))
	if err != nil {
		s.reporter.Report(ctx, guildID, fmt.Sprintf(
			"Unable to remove role: **%s**, please check my permissions relative to that role.",
			st.RoleName(todo.AddRoleID)))
	}
}

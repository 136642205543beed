package service

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/dragonpaw/ashbot/internal/domain"
)

const roleMenuNote = "**Using role menus:**\n" +
	"Please click/tap on the reactions above to pick the roles you'd like. " +
	"Doing so will add those server roles to you.\n" +
	"_ _\n" +
	"**Note:** From time to time these messages will be deleted, when roles " +
	"are updated. You do not need to re-select roles to keep them."

const singleRoleMenuNote = "**Note:** You can only pick a single option from this list. " +
	"Choosing a new one will remove all the others from your profile."

// resolvedOption is a menu option whose role and emoji both exist.
type resolvedOption struct {
	emoji  ResolvedEmoji
	roleID string
}

// configureRoleMenus rebuilds the role channel: wipes the bot's old
// messages, posts one embed per menu plus the trailing usage note, and
// fills st.RoleEmojis with the (message, emoji) -> intent map. Reference
// errors skip the option and are returned as strings; they never abort the
// rest of the reconfiguration.
func (s *SetupService) configureRoleMenus(ctx context.Context, cfg *domain.RolesConfig, st *domain.GuildState, res *resolved) []string {
	var errs []string

	chID, ok, err := resolveChannel(s.d, st.ID, cfg.Channel, discordgo.WithContext(ctx))
	if err != nil {
		return append(errs, "Unable to list channels: "+err.Error())
	}
	if !ok {
		return append(errs, fmt.Sprintf("Role channel '%s' doesn't seem to exist.", cfg.Channel))
	}

	if len(cfg.Menu) == 0 {
		return append(errs, "Role channel is set, but no role menus seem to exist.")
	}

	// Cleanup must land before anything new is posted, or reconciliation
	// stops being a full replace. The channel id is only committed once
	// that wipe went through.
	if err := s.deleteMyMessages(ctx, chID); err != nil {
		return append(errs, "Unable to clear the old role menus: "+err.Error())
	}
	st.RoleChannelID = chID

	colors := rainbow(len(cfg.Menu))
	for i, menu := range cfg.Menu {
		log.Printf("G=%s adding the menu: %s", st.Name, menu.Name)

		embed := &discordgo.MessageEmbed{Color: colors[i], Title: menu.Name}
		if menu.Single {
			embed.Title = menu.Name + " (Pick 1)"
			if menu.Description != "" {
				embed.Description = menu.Description + "\n_ _\n" + singleRoleMenuNote
			} else {
				embed.Description = singleRoleMenuNote
			}
		} else {
			embed.Description = menu.Description
		}

		var opts []resolvedOption
		for _, o := range menu.Options {
			em, ok := res.emojis[o.Emoji]
			if !ok {
				errs = append(errs, fmt.Sprintf("Emoji '%s' doesn't seem to exist.", o.Emoji))
				continue
			}
			roleID, ok := res.roles[o.Role]
			if !ok {
				errs = append(errs, fmt.Sprintf("Role '%s' doesn't seem to exist.", o.Role))
				continue
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  o.Role,
				Value: em.Mention + " " + o.Description + "\n_ _\n",
			})
			opts = append(opts, resolvedOption{emoji: em, roleID: roleID})
		}

		msg, err := s.d.ChannelMessageSendComplex(chID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{embed},
		}, discordgo.WithContext(ctx))
		if err != nil {
			errs = append(errs, fmt.Sprintf("Unable to send the menu '%s': %s", menu.Name, err.Error()))
			continue
		}

		for _, o := range opts {
			var removes []string
			if menu.Single {
				// Exclusivity sweeps over the options that resolved; a stale
				// id from an unresolved sibling would only fail at event time.
				for _, other := range opts {
					if other.roleID != o.roleID {
						removes = append(removes, other.roleID)
					}
				}
			}
			st.RoleEmojis[domain.MenuKey{MessageID: msg.ID, Emoji: o.emoji.Identity}] = domain.RoleMenuOptionState{
				AddRoleID:     o.roleID,
				RemoveRoleIDs: removes,
			}
		}

		// Seed reactions in option order so they line up with the fields.
		for _, o := range opts {
			if err := s.d.MessageReactionAdd(chID, msg.ID, o.emoji.API, discordgo.WithContext(ctx)); err != nil {
				errs = append(errs, fmt.Sprintf("Unable to add the reaction %s on '%s': %s", o.emoji.Mention, menu.Name, err.Error()))
			}
		}
	}

	// The big note at the end.
	if _, err := s.d.ChannelMessageSendComplex(chID, &discordgo.MessageSend{Content: roleMenuNote}, discordgo.WithContext(ctx)); err != nil {
		errs = append(errs, "Unable to send the role menu note: "+err.Error())
	}
	return errs
}

package discord

import "github.com/bwmarrin/discordgo"

// requireManageRoles is a belt-and-braces check behind the command's
// DefaultMemberPermissions: owner, or any role carrying Administrator or
// Manage Roles.
func (r *Router) requireManageRoles(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if g, _ := s.State.Guild(ic.GuildID); g != nil && ic.Member != nil && ic.Member.User != nil && ic.Member.User.ID == g.OwnerID {
		return true
	}

	roles, _ := s.GuildRoles(ic.GuildID)
	var perms int64
	for _, rid := range ic.Member.Roles {
		for _, ro := range roles {
			if ro.ID == rid {
				perms |= ro.Permissions
			}
		}
	}
	if perms&(discordgo.PermissionAdministrator|discordgo.PermissionManageRoles) != 0 {
		return true
	}

	ReplyEphemeral(s, ic, "🔒 You need Manage Roles to do that.")
	return false
}

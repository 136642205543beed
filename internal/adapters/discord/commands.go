package discord

import "github.com/bwmarrin/discordgo"

var (
	manageRoles = int64(discordgo.PermissionManageRoles)
	noDMs       = false
)

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:                     "config",
		Description:              "Configure the bot for this server via a URL to a TOML file",
		DefaultMemberPermissions: &manageRoles,
		DMPermission:             &noDMs,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "url",
			Description: "Link to the config you wish to use",
			Required:    true,
		}},
	},
}

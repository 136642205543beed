package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Member == nil || ic.GuildID == "" {
		// Commands are guild-only; a DM invocation has no Member.
		return
	}
	cmd := ic.ApplicationCommandData()
	log.Printf("cmd: /%s by=%s guild=%s", cmd.Name, ic.Member.User.ID, ic.GuildID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in cmd /%s: %v", cmd.Name, rec)
			ReplyEphemeral(s, ic, "⚠️ Something unexpected went wrong. Contact an admin.")
		}
	}()

	_ = DeferEphemeral(s, ic)
	// Reconfiguration deletes and reposts whole channels worth of messages;
	// give it room.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch cmd.Name {
	case "config":
		if !r.requireManageRoles(s, ic) {
			return
		}
		url, ok := optStr(ic, "url")
		if !ok || url == "" {
			ReplyEphemeral(s, ic, "Usage: `/config url:<link to a TOML file>`")
			return
		}
		defer step("config.reconcile")()
		if err := r.setup.Configure(ctx, ic.GuildID, url); err != nil {
			ReplyEphemeral(s, ic, "⚠️ Config failed: "+err.Error())
			return
		}
		ReplyEphemeral(s, ic, "✅ Config loaded. Check the log channel for any warnings.")
	}
}

package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/dragonpaw/ashbot/internal/app/service"
)

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Member == nil || ic.GuildID == "" {
		// Buttons only live on guild messages; a DM click has no Member.
		return
	}
	data := ic.MessageComponentData()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in component %s: %v", data.CustomID, rec)
			ReplyEphemeral(s, ic, "⚠️ Something unexpected went wrong.")
		}
	}()

	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	switch data.CustomID {
	case service.RulesAgreedID:
		if !r.clickLimiter.Allow(ic.Member.User.ID) {
			ReplyEphemeral(s, ic, "⏳ Give it a second…")
			return
		}
		msg, err := r.lobby.OnRulesAgreed(ctx, ic.GuildID, ic.Member.User.ID)
		if err != nil {
			ReplyEphemeral(s, ic, "⚠️ I couldn't remove your role, an admin has been notified.")
			return
		}
		if msg != "" {
			ReplyEphemeral(s, ic, msg)
		}
	}
}

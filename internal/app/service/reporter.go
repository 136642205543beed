package service

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
)

// Reporter dumps config and permission errors somewhere a guild operator
// will hopefully see them: the log channel if one is configured, else the
// role channel, else only the local log.
type Reporter struct {
	d     Discord
	store *StateStore
}

func NewReporter(d Discord, store *StateStore) *Reporter {
	return &Reporter{d: d, store: store}
}

func (r *Reporter) Report(ctx context.Context, guildID, errMsg string) {
	st, ok := r.store.Get(ctx, guildID)
	if !ok {
		log.Printf("can't report errors on an unknown guild %s: %s", guildID, errMsg)
		return
	}

	to := st.LogChannelID
	if to == "" {
		to = st.RoleChannelID
	}
	if to == "" {
		log.Printf("G=%s no place to complain to: %s", st.Name, errMsg)
		return
	}

	log.Printf("G=%s %s", st.Name, errMsg)
	_, err := r.d.ChannelMessageSendComplex(to, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🤯 Oh Snap!",
			Description: errMsg,
			Color:       colorRed,
		}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Printf("G=%s posting error report: %v", st.Name, err)
	}
}

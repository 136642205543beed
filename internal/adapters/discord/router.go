package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/dragonpaw/ashbot/internal/app/service"
)

// Router owns the explicit wiring between gateway events and the
// services. Everything is registered here at startup; there is no implicit
// handler discovery.
type Router struct {
	s *discordgo.Session

	// Guild to register commands on. Empty means global commands.
	commandGuildID string

	setup     *service.SetupService
	lobby     *service.LobbyService
	reactions *service.ReactionService
	store     *service.StateStore

	clickLimiter *userLimiter
}

func NewRouter(
	s *discordgo.Session,
	commandGuildID string,
	setup *service.SetupService,
	lobby *service.LobbyService,
	reactions *service.ReactionService,
	store *service.StateStore,
) *Router {
	return &Router{
		s:              s,
		commandGuildID: commandGuildID,
		setup:          setup,
		lobby:          lobby,
		reactions:      reactions,
		store:          store,
		clickLimiter:   newUserLimiter(2 * time.Second),
	}
}

func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, r.commandGuildID, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		}
	})

	r.s.AddHandler(func(s *discordgo.Session, ev *discordgo.MessageReactionAdd) {
		if ev.GuildID == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r.reactions.OnReactionAdd(ctx, ev.GuildID, ev.MessageID, ev.UserID, service.EmojiIdentityOf(&ev.Emoji))
	})

	r.s.AddHandler(func(s *discordgo.Session, ev *discordgo.MessageReactionRemove) {
		if ev.GuildID == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r.reactions.OnReactionRemove(ctx, ev.GuildID, ev.MessageID, ev.UserID, service.EmojiIdentityOf(&ev.Emoji))
	})

	r.s.AddHandler(func(s *discordgo.Session, ev *discordgo.GuildCreate) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if st, ok := r.store.Get(ctx, ev.ID); ok {
			log.Printf("G=%s state loaded, resuming services", st.Name)
		} else {
			log.Printf("G=%s no state found, so nothing to do", ev.Name)
		}
	})

	r.s.AddHandler(func(s *discordgo.Session, ev *discordgo.GuildMemberAdd) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r.lobby.OnMemberJoin(ctx, ev.GuildID, ev.User.ID, ev.User.Mention())
	})
}

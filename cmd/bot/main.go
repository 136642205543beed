package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/dragonpaw/ashbot/internal/adapters/confsource"
	discordrouter "github.com/dragonpaw/ashbot/internal/adapters/discord"
	"github.com/dragonpaw/ashbot/internal/app/service"
	"github.com/dragonpaw/ashbot/internal/infra/config"
	"github.com/dragonpaw/ashbot/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}
	log.Println("✅ DB ready and migrated")

	stateRepo := storage.NewStateRepo(db)

	// Discord session
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildEmojis
	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	log.Printf("✅ connected as %s (%s)", s.State.User.Username, s.State.User.ID)

	// Services
	store := service.NewStateStore(stateRepo)
	reporter := service.NewReporter(s, store)
	fetcher := confsource.New()
	setupSvc := service.NewSetupService(s, fetcher, store, reporter, s.State.User.ID)
	lobbySvc := service.NewLobbyService(s, store, reporter)
	reactionSvc := service.NewReactionService(s, store, reporter, s.State.User.ID)

	// Router
	r := discordrouter.NewRouter(s, cfg.CommandGuildID, setupSvc, lobbySvc, reactionSvc, store)
	if err := r.Register(); err != nil {
		log.Fatalf("registering commands: %v", err)
	}
	r.Handlers()
	log.Println("✅ commands registered, handlers wired")

	// Wait for a signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}

package config

import (
	"log"
	"os"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string

	// Optional: register slash commands against a single guild (instant
	// propagation, handy for dev). Empty means global registration.
	CommandGuildID string
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("missing env %s", k)
		}
		return v
	}

	return Config{
		DatabaseURL:    get("DATABASE_URL", true),
		DiscordToken:   get("DISCORD_BOT_TOKEN", true),
		CommandGuildID: get("COMMAND_GUILD_ID", false),
	}
}

package service

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/dragonpaw/ashbot/internal/domain"
)

// How far back we look when wiping our own old messages out of a channel.
const cleanupLookback = 200

// SetupService runs the whole guild reconfiguration: fetch the document,
// parse it, snapshot the live guild, rebuild every feature, and publish
// the new state atomically at the end.
type SetupService struct {
	d        Discord
	fetch    ConfigFetcher
	store    *StateStore
	reporter *Reporter
	selfID   string
}

func NewSetupService(d Discord, fetch ConfigFetcher, store *StateStore, reporter *Reporter, selfID string) *SetupService {
	return &SetupService{d: d, fetch: fetch, store: store, reporter: reporter, selfID: selfID}
}

// Configure reloads a guild from a config URL. A fetch or parse failure
// aborts without touching state; reference errors inside a feature only
// degrade that feature. Partial results are still committed: valid menus
// stay usable even when some options were bad.
func (s *SetupService) Configure(ctx context.Context, guildID, url string) error {
	text, err := s.fetch.Fetch(ctx, url)
	if err != nil {
		s.reporter.Report(ctx, guildID, "Unable to fetch the config: "+err.Error())
		return err
	}
	cfg, err := domain.ParseConfig(text)
	if err != nil {
		s.reporter.Report(ctx, guildID, err.Error())
		return err
	}

	g, err := s.d.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	log.Printf("G=%s setting up guild with file %s", g.Name, url)

	res, err := snapshotGuild(s.d, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}

	st := domain.NewGuildState(guildID, g.Name, url, time.Now().UTC())
	st.RoleNames = res.roleNames

	var errs []string
	if cfg.LogChannel != "" {
		id, ok, err := resolveChannel(s.d, guildID, cfg.LogChannel, discordgo.WithContext(ctx))
		switch {
		case err != nil:
			errs = append(errs, "Unable to list channels: "+err.Error())
		case !ok:
			errs = append(errs, "Log channel '"+cfg.LogChannel+"' doesn't seem to exist.")
		default:
			st.LogChannelID = id
		}
	}

	if cfg.Roles != nil {
		errs = append(errs, s.configureRoleMenus(ctx, cfg.Roles, st, res)...)
	}
	if cfg.Lobby != nil {
		errs = append(errs, s.configureLobby(ctx, cfg.Lobby, st, res)...)
	}

	// Publish first so the error reports can land in the channels this very
	// run just resolved.
	if err := s.store.Put(ctx, st); err != nil {
		errs = append(errs, "Unable to save the guild state: "+err.Error())
	}
	for _, e := range errs {
		s.reporter.Report(ctx, guildID, e)
	}

	log.Printf("G=%s configured guild, %d error(s)", g.Name, len(errs))
	return nil
}

// deleteMyMessages wipes every bot-authored message in the recent history
// of a channel, bounded by cleanupLookback. A channel with no bot messages
// is a no-op.
func (s *SetupService) deleteMyMessages(ctx context.Context, channelID string) error {
	before := ""
	for fetched := 0; fetched < cleanupLookback; {
		page, err := s.d.ChannelMessages(channelID, 100, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		for _, m := range page {
			if m.Author != nil && m.Author.ID == s.selfID {
				if err := s.d.ChannelMessageDelete(channelID, m.ID, discordgo.WithContext(ctx)); err != nil {
					return err
				}
			}
		}
		fetched += len(page)
		before = page[len(page)-1].ID
		if len(page) < 100 {
			return nil
		}
	}
	return nil
}

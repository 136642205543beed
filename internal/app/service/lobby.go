package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/dragonpaw/ashbot/internal/domain"
)

// RulesAgreedID is the custom id on the "I agree" button under the rules
// embed.
const RulesAgreedID = "rules_agreed"

var placeholderRe = regexp.MustCompile(`\{[a-z_]+\}`)

// configureLobby sets up the onboarding channel: the join role, the
// welcome template, and optionally the rules embed with its agree button.
func (s *SetupService) configureLobby(ctx context.Context, cfg *domain.LobbyConfig, st *domain.GuildState, res *resolved) []string {
	var errs []string

	chID, ok, err := resolveChannel(s.d, st.ID, cfg.Channel, discordgo.WithContext(ctx))
	if err != nil {
		return append(errs, "Unable to list channels: "+err.Error())
	}
	if !ok {
		return append(errs, fmt.Sprintf("Lobby channel '%s' doesn't seem to exist.", cfg.Channel))
	}
	st.LobbyChannelID = chID

	if cfg.Role != "" {
		if id, ok := res.roles[cfg.Role]; ok {
			st.LobbyRoleID = id
		} else {
			errs = append(errs, fmt.Sprintf("The lobby role '%s' doesn't seem to exist.", cfg.Role))
		}
	}
	if cfg.KickAfterDays > 0 {
		st.LobbyKickDays = cfg.KickAfterDays
	}
	if cfg.WelcomeMessage != "" {
		st.LobbyWelcome = cfg.WelcomeMessage
	}
	if cfg.ClickForRules && cfg.Role == "" {
		errs = append(errs, "The lobby has click-through rules, but no role to remove when they click.")
	}

	if cfg.Rules != "" {
		if err := s.deleteMyMessages(ctx, chID); err != nil {
			return append(errs, "Unable to clear the old lobby messages: "+err.Error())
		}

		st.LobbyRules = cfg.Rules
		st.LobbyClickForRules = cfg.ClickForRules

		send := &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Server Rules",
				Description: cfg.Rules,
				Color:       colorBlue,
			}},
		}
		if cfg.ClickForRules && st.LobbyRoleID != "" {
			send.Components = []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "I agree",
							Style:    discordgo.SuccessButton,
							CustomID: RulesAgreedID,
							Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
						},
					},
				},
			}
		}

		msg, err := s.d.ChannelMessageSendComplex(chID, send, discordgo.WithContext(ctx))
		if err != nil {
			errs = append(errs, "Unable to send the rules: "+err.Error())
		} else {
			st.LobbyRulesMessageID = msg.ID
		}
	}

	log.Printf("G=%s configured lobby channel %s", st.Name, cfg.Channel)
	return errs
}

// LobbyService handles the live onboarding events. New members get the
// lobby role on join and lose it again by clicking the rules button; the
// role is deliberately inverted like that, the "lobby" role marks people
// who have NOT yet agreed.
type LobbyService struct {
	d        Discord
	store    *StateStore
	reporter *Reporter
}

func NewLobbyService(d Discord, store *StateStore, reporter *Reporter) *LobbyService {
	return &LobbyService{d: d, store: store, reporter: reporter}
}

// OnMemberJoin grants the configured join role and posts the welcome
// message. Both are best effort; failures are reported, never fatal.
func (s *LobbyService) OnMemberJoin(ctx context.Context, guildID, userID, mention string) {
	st, ok := s.store.Get(ctx, guildID)
	if !ok {
		log.Printf("member join on an unconfigured guild: %s", guildID)
		return
	}

	if st.LobbyRoleID != "" {
		err := s.d.GuildMemberRoleAdd(guildID, userID, st.LobbyRoleID,
			discordgo.WithAuditLogReason("New member role"), discordgo.WithContext(ctx))
		if err != nil {
			s.reporter.Report(ctx, guildID, fmt.Sprintf(
				"Unable to add role: **%s**, please check my permissions relative to that role.",
				st.RoleName(st.LobbyRoleID)))
		}
	}

	if st.LobbyWelcome != "" && st.LobbyChannelID != "" {
		msg, err := renderWelcome(st.LobbyWelcome, mention, st.LobbyKickDays)
		if err != nil {
			s.reporter.Report(ctx, guildID,
				"Welcome message has an unknown substitution in it: "+err.Error())
			return
		}
		_, err = s.d.ChannelMessageSendComplex(st.LobbyChannelID, &discordgo.MessageSend{
			Content: msg,
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{
					discordgo.AllowedMentionTypeUsers,
					discordgo.AllowedMentionTypeRoles,
				},
			},
		}, discordgo.WithContext(ctx))
		if err != nil {
			log.Printf("G=%s posting welcome message: %v", st.Name, err)
		}
	}
}

// OnRulesAgreed handles the agree-button click by removing the lobby role.
// Returns the ephemeral acknowledgement to show the member, empty when the
// click was irrelevant (unconfigured guild, no lobby role).
func (s *LobbyService) OnRulesAgreed(ctx context.Context, guildID, userID string) (string, error) {
	st, ok := s.store.Get(ctx, guildID)
	if !ok {
		log.Printf("rules click on an unconfigured guild: %s", guildID)
		return "", nil
	}
	if st.LobbyRoleID == "" {
		return "", nil
	}

	log.Printf("G=%s U=%s agreed to the rules, they are %s no more.", st.Name, userID, st.RoleName(st.LobbyRoleID))
	err := s.d.GuildMemberRoleRemove(guildID, userID, st.LobbyRoleID,
		discordgo.WithAuditLogReason("Member agreed to the rules"), discordgo.WithContext(ctx))
	if err != nil {
		s.reporter.Report(ctx, guildID, fmt.Sprintf(
			"Unable to remove role: **%s**, please check my permissions relative to that role.",
			st.RoleName(st.LobbyRoleID)))
		return "", err
	}
	return fmt.Sprintf("Thank you. Removing your %s role.", st.RoleName(st.LobbyRoleID)), nil
}

// renderWelcome substitutes the {name} and {days} placeholders. Any other
// placeholder left after substitution is an operator typo and comes back
// as an error.
func renderWelcome(tmpl, mention string, days int) (string, error) {
	out := strings.NewReplacer(
		"{name}", mention,
		"{days}", strconv.Itoa(days),
	).Replace(tmpl)
	if left := placeholderRe.FindString(out); left != "" {
		return "", fmt.Errorf("%s", left)
	}
	return out, nil
}

package discord

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// WebhookExecutor posts a message through a Discord webhook. *discordgo.Session satisfies it.
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier announces completions in a Discord channel
type Notifier struct {
	executor  WebhookExecutor
	webhookID string
	token     string
	username  string
}

// NewNotifier creates a notifier posting to webhookURL
func NewNotifier(webhookURL string) (*Notifier, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// Webhook execution is authenticated by the token in the URL, not a bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return NewNotifierWithExecutor(session, id, token), nil
}

// NewNotifierWithExecutor creates a notifier over an existing executor
func NewNotifierWithExecutor(executor WebhookExecutor, webhookID, token string) *Notifier {
	return &Notifier{
		executor:  executor,
		webhookID: webhookID,
		token:     token,
		username:  DefaultUsername,
	}
}

// ParseWebhookURL extracts the id and token of a .../api/webhooks/{id}/{token} URL
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: webhook url: %v", domain.ErrInvalidInput, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("%w: webhook url has no id and token", domain.ErrInvalidInput)
}

// Subscribe registers the notifier for completion events
func (n *Notifier) Subscribe(bus event.Bus) {
	bus.Subscribe(event.RequirementCompleted, n.HandleEvent)
	bus.Subscribe(event.TierCompleted, n.HandleEvent)
	bus.Subscribe(event.TileCompleted, n.HandleEvent)
}

// HandleEvent posts an announcement for a completion event. Send failures are
// returned so the resilient publisher retries them.
func (n *Notifier) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	embed, err := n.embedFor(evt)
	if err != nil {
		log.Warn(LogMsgPayloadUndecodable, "type", evt.Type, "error", err)
		return nil
	}
	if embed == nil {
		return nil
	}

	if _, err := n.executor.WebhookExecute(n.webhookID, n.token, false, &discordgo.WebhookParams{
		Username: n.username,
		Embeds:   []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}, discordgo.WithContext(ctx)); err != nil {
		log.Error(LogMsgNotificationFailed, "type", evt.Type, "error", err)
		return fmt.Errorf("discord webhook: %w", err)
	}

	log.Debug(LogMsgNotificationSent, "type", evt.Type)
	return nil
}

func (n *Notifier) embedFor(evt event.Event) (*discordgo.MessageEmbed, error) {
	switch evt.Type {
	case event.RequirementCompleted:
		p, err := event.DecodePayload[event.RequirementCompletedPayloadV1](evt.Payload)
		if err != nil {
			return nil, err
		}
		if p.RequirementType == domain.RequirementPuzzle {
			return &discordgo.MessageEmbed{
				Title:       TitlePuzzleSolved,
				Description: fmt.Sprintf(MsgPuzzleSolved, p.PlayerName, p.DisplayName, p.TileName),
				Color:       ColorRequirement,
				Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf(FooterTeam, p.TeamID)},
				Timestamp:   p.CompletedAt.UTC().Format(time.RFC3339),
			}, nil
		}
		return &discordgo.MessageEmbed{
			Title:       TitleRequirementCompleted,
			Description: fmt.Sprintf(MsgRequirementCompleted, p.PlayerName, n.kindName(p.RequirementType), p.TileName, p.ProgressValue, p.TargetValue),
			Color:       ColorRequirement,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf(FooterTeam, p.TeamID)},
			Timestamp:   p.CompletedAt.UTC().Format(time.RFC3339),
		}, nil

	case event.TierCompleted:
		p, err := event.DecodePayload[event.TierCompletedPayloadV1](evt.Payload)
		if err != nil {
			return nil, err
		}
		if p.RequirementType == domain.RequirementPuzzle {
			return nil, nil
		}
		return &discordgo.MessageEmbed{
			Title:       TitleTierCompleted,
			Description: fmt.Sprintf(MsgTierCompleted, p.PlayerName, p.Tier+1, n.kindName(p.RequirementType), p.TileName),
			Color:       ColorTier,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf(FooterTeam, p.TeamID)},
			Timestamp:   p.CompletedAt.UTC().Format(time.RFC3339),
		}, nil

	case event.TileCompleted:
		p, err := event.DecodePayload[event.TileCompletedPayloadV1](evt.Payload)
		if err != nil {
			return nil, err
		}
		return &discordgo.MessageEmbed{
			Title:       TitleTileCompleted,
			Description: fmt.Sprintf(MsgTileCompleted, p.PlayerName, p.TileName),
			Color:       ColorTile,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf(FooterTeam, p.TeamID)},
			Timestamp:   p.CompletedAt.UTC().Format(time.RFC3339),
		}, nil
	}
	return nil, nil
}

// kindName renders a requirement type for people, e.g. BA_GAMBLES as "Ba Gambles"
func (n *Notifier) kindName(t domain.RequirementType) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(string(t)), "_", " "))
}

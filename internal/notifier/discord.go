// Package notifier tells event organisers about new registrations.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/bwmarrin/discordgo"
)

// messageSender is the part of *discordgo.Session the notifier uses.
type messageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts a message to a Discord channel per registration.
type DiscordNotifier struct {
	session   messageSender
	channelID string
}

// NewDiscordNotifier constructs a DiscordNotifier from an existing session.
func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{session: session, channelID: channelID}
}

// NewDiscordBot opens a bot-token session for the given channel. The session
// is only used for REST calls, so no gateway connection is opened.
func NewDiscordBot(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return NewDiscordNotifier(session, channelID), nil
}

// NotifyRegistration posts the registration summary.
func (n *DiscordNotifier) NotifyRegistration(ctx context.Context, event *model.Event, reg *model.Registration) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	if _, err := n.session.ChannelMessageSend(n.channelID, formatMessage(event, reg), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func formatMessage(event *model.Event, reg *model.Registration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**New registration** for %s\n", event.Title)
	fmt.Fprintf(&b, "**Token:** #%d\n", reg.Token)
	if reg.IsTeam() {
		fmt.Fprintf(&b, "**Team:** %s (%s)\n", reg.TeamName, reg.Name)
	} else {
		fmt.Fprintf(&b, "**Student:** %s\n", reg.Name)
	}
	fmt.Fprintf(&b, "**Contact:** %s", reg.Email)
	return b.String()
}

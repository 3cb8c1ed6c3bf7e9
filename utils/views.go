package utils

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// CreateActionRow creates an action row with buttons
func CreateActionRow(buttons ...discordgo.MessageComponent) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: buttons,
	}
}

// CreateButton creates a button component
func CreateButton(customID, label string, style discordgo.ButtonStyle, disabled bool, emoji *discordgo.ComponentEmoji) discordgo.MessageComponent {
	button := discordgo.Button{
		CustomID: customID,
		Label:    label,
		Style:    style,
		Disabled: disabled,
	}

	if emoji != nil {
		button.Emoji = emoji
	}

	return button
}

// CreateSelectMenu creates a select menu component
func CreateSelectMenu(customID, placeholder string, options []discordgo.SelectMenuOption, disabled bool) discordgo.MessageComponent {
	return discordgo.SelectMenu{
		CustomID:    customID,
		Placeholder: placeholder,
		Options:     options,
		Disabled:    disabled,
	}
}

// SendInteractionResponse sends an interaction response with embed and components
func SendInteractionResponse(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{OptimizeEmbedPayload(embed)},
		Components: components,
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		BotLogf("DISCORD_API", "SendInteractionResponse failed: %v", err)
	}
	return err
}

// UpdateComponentInteraction updates the message a component belongs to
func UpdateComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{OptimizeEmbedPayload(embed)},
			Components: components,
		},
	}

	return s.InteractionRespond(i.Interaction, response)
}

// EditChannelMessage edits a message outside of an interaction, retrying
// transient failures with a short backoff
func EditChannelMessage(ctx context.Context, s *discordgo.Session, channelID, messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, maxRetries int) error {
	edit := &discordgo.MessageEdit{
		ID:      messageID,
		Channel: channelID,
		Embeds:  &[]*discordgo.MessageEmbed{OptimizeEmbedPayload(embed)},
	}
	if components != nil {
		edit.Components = &components
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(50*attempt*attempt) * time.Millisecond
			if backoff > 500*time.Millisecond {
				backoff = 500 * time.Millisecond
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		_, err := s.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
		if err == nil {
			return nil
		}
		lastErr = err
		if isNonRetryableError(err) {
			break
		}
	}
	return fmt.Errorf("edit message %s: %w", messageID, lastErr)
}

// isNonRetryableError checks if an error should not be retried
func isNonRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unknown Message") ||
		strings.Contains(msg, "\"code\": 10008") ||
		strings.Contains(msg, "Unknown interaction") ||
		strings.Contains(msg, "400") ||
		strings.Contains(msg, "403")
}

// OptimizeEmbedPayload trims whitespace, drops empty optional parts and fits
// each text to Discord's embed limits. Multi-line text is cut at a line break
// so track lanes are never split.
func OptimizeEmbedPayload(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	if embed == nil {
		return nil
	}

	out := &discordgo.MessageEmbed{
		Title:       fitText(embed.Title, EmbedTitleLimit),
		Description: fitText(embed.Description, EmbedDescriptionLimit),
		Color:       embed.Color,
		Timestamp:   embed.Timestamp,
	}
	if embed.Footer != nil {
		if text := fitText(embed.Footer.Text, EmbedFooterLimit); text != "" {
			out.Footer = &discordgo.MessageEmbedFooter{Text: text, IconURL: embed.Footer.IconURL}
		}
	}
	if embed.Thumbnail != nil && embed.Thumbnail.URL != "" {
		out.Thumbnail = embed.Thumbnail
	}
	for _, f := range embed.Fields {
		if len(out.Fields) == EmbedFieldCountLimit {
			break
		}
		if f == nil {
			continue
		}
		name, value := fitText(f.Name, EmbedFieldNameLimit), fitText(f.Value, EmbedFieldValueLimit)
		if name == "" || value == "" {
			continue
		}
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: f.Inline})
	}
	return out
}

// fitText trims s and shortens it to at most limit runes, ending in an
// ellipsis. The cut prefers the last line break that fits, leaving the
// ellipsis on a line of its own.
func fitText(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)[:limit-1]
	cut := string(runes)
	if nl := strings.LastIndexByte(cut, '\n'); nl > 0 {
		return strings.TrimRight(cut[:nl], " \n") + "\n…"
	}
	return cut + "…"
}

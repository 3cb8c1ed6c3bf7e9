package utils

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// CreateBrandedEmbed creates a basic embed with bot branding
func CreateBrandedEmbed(title, description string, color int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    BotFooterText,
			IconURL: BotFooterIcon,
		},
	}

	return embed
}

// ErrorEmbed creates a red embed for rejected actions
func ErrorEmbed(title, message string) *discordgo.MessageEmbed {
	return CreateBrandedEmbed(title, message, ColorError)
}

// DerbyEmbed is a branded embed with the derby thumbnail
func DerbyEmbed(title, description string, color int) *discordgo.MessageEmbed {
	embed := CreateBrandedEmbed(title, description, color)
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: DerbyThumbURL}
	return embed
}

// ResetEmbed is shown after a table is cleared
func ResetEmbed() *discordgo.MessageEmbed {
	return DerbyEmbed("🧹 Table Reset", ResetMessage, ColorNeutral)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hrc-derby/games/horse_racing"
	"hrc-derby/httpserver"
	"hrc-derby/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	tableCleanupInterval = 10 * time.Minute
	tableMaxIdle         = 2 * time.Hour
)

func main() {
	cfg := utils.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("derby exited")
		os.Exit(1)
	}
	utils.BotLogf("MAIN", "Gracefully shut down")
}

// run serves the derby until ctx is done or a component fails. Deferred
// cleanup runs on every return.
func run(ctx context.Context, cfg utils.Config) error {
	// Initialize database
	if err := utils.SetupDatabase(ctx, cfg.DatabaseURL); err != nil {
		utils.BotWarnf("DATABASE", "Database setup failed, using file catalog only: %v", err)
	} else if utils.DB != nil {
		utils.BotLogf("DATABASE", "Database connected successfully")
		defer utils.CloseDatabase()
	}

	// The catalog starts empty and fills in the background; adding a horse
	// before it lands reports that no types are available.
	catalog := horse_racing.NewCatalog()
	go horse_racing.LoadCatalog(ctx, catalog, utils.DB, cfg.CatalogPath)

	registry := horse_racing.NewRegistry(catalog, utils.Animations)
	defer utils.Animations.CancelAll()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		registry.RunCleanup(ctx, tableCleanupInterval, tableMaxIdle)
		return nil
	})

	srv := httpserver.New(ctx, registry)
	g.Go(func() error {
		return srv.Serve(ctx, ":"+cfg.Port)
	})

	if cfg.BotToken == "" {
		utils.BotLogf("DISCORD", "BOT_TOKEN not set - Discord bot will not connect")
	} else {
		g.Go(func() error {
			return runBot(ctx, cfg, horse_racing.NewDerby(registry, cfg.RenderInterval))
		})
	}

	return g.Wait()
}

// runBot connects to Discord and serves /derby until ctx is done.
func runBot(ctx context.Context, cfg utils.Config, derby *horse_racing.Derby) error {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		onReady(s, event, cfg.GuildID)
	})
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		onInteractionCreate(s, i, derby)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	utils.BotLogf("DISCORD", "Bot is now running")

	<-ctx.Done()
	utils.BotLogf("DISCORD", "Gracefully shutting down...")
	return session.Close()
}

func onReady(s *discordgo.Session, event *discordgo.Ready, guildID string) {
	utils.BotLogf("DISCORD", "Logged in as %s (ID: %s)", event.User.Username, event.User.ID)

	if err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{
			{
				Name: "the Derby",
				Type: discordgo.ActivityTypeWatching,
			},
		},
		Status: "online",
	}); err != nil {
		utils.BotWarnf("DISCORD", "Failed to update status: %v", err)
	}

	if err := registerSlashCommands(s, guildID); err != nil {
		utils.BotWarnf("DISCORD", "Failed to register slash commands: %v", err)
	}
}

func registerSlashCommands(s *discordgo.Session, guildID string) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check bot latency",
		},
		horse_racing.RegisterHorseRacingCommand(),
	}

	for _, command := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, command); err != nil {
			return fmt.Errorf("failed to create command %s: %w", command.Name, err)
		}
	}

	utils.BotLogf("DISCORD", "Successfully registered %d slash commands", len(commands))
	return nil
}

func onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, derby *horse_racing.Derby) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "ping":
			handlePingCommand(s, i)
		case "derby":
			derby.HandleHorseRacingCommand(s, i)
		}
	case discordgo.InteractionMessageComponent:
		if strings.HasPrefix(i.MessageComponentData().CustomID, "derby_") {
			derby.HandleHorseRacingInteraction(s, i)
		}
	}
}

func handlePingCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	startTime := time.Now()
	latency := s.HeartbeatLatency()

	embed := utils.CreateBrandedEmbed("🏓 Pong!", "", utils.BotColor)
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Latency",
			Value:  fmt.Sprintf("%dms", latency.Milliseconds()),
			Inline: true,
		},
		{
			Name:   "Response Time",
			Value:  fmt.Sprintf("%dms", time.Since(startTime).Milliseconds()),
			Inline: true,
		},
	}
	_ = utils.SendInteractionResponse(s, i, embed, nil, false)
}

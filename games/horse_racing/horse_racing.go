package horse_racing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrc-derby/utils"

	"github.com/bwmarrin/discordgo"
)

var horseEmojis = []string{"🐴", "🐎", "🦄", "🏇"}

var betSteps = []int64{-10, -1, 1, 10}

const (
	customPick  = "derby_pick"
	customBet   = "derby_bet_"
	customStart = "derby_start"
	customReset = "derby_reset"
)

// Derby is the Discord front end: one table per channel, driven by the
// /derby command and the buttons on its board message.
type Derby struct {
	registry       *Registry
	renderInterval time.Duration

	mu     sync.Mutex
	boards map[string]string // channelID -> board message ID
}

func NewDerby(registry *Registry, renderInterval time.Duration) *Derby {
	if renderInterval <= 0 {
		renderInterval = utils.DefaultRenderInterval
	}
	return &Derby{registry: registry, renderInterval: renderInterval, boards: make(map[string]string)}
}

// RegisterHorseRacingCommand describes /derby and its subcommands.
func RegisterHorseRacingCommand() *discordgo.ApplicationCommand {
	minBet := float64(-1_000_000)
	return &discordgo.ApplicationCommand{
		Name:        "derby",
		Description: "Enter horses, place bets and run a horse race in this channel.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add", Description: "Enter a horse under a random type",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Horse name", Required: true, MaxLength: 32},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "bet", Description: "Raise or lower the bet on a horse",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "horse", Description: "Horse name", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Chips to add (negative to remove)", Required: true, MinValue: &minBet},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "start", Description: "Start the race"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "reset", Description: "Clear horses, bets and results"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Show the table"},
		},
	}
}

// HandleHorseRacingCommand routes /derby subcommands.
func (d *Derby) HandleHorseRacingCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	table := d.registry.Get(i.ChannelID)

	switch sub.Name {
	case "add":
		name := optionString(sub.Options, "name")
		h, err := table.AddHorse(name)
		if err != nil {
			reject(s, i, "🏇 Derby", rejectionText(err))
			return
		}
		d.respondBoard(s, i, fmt.Sprintf("**%s** joins the field as a **%s**.", h.Name, h.Type.TypeName), table.Snapshot())
	case "bet":
		name := strings.TrimSpace(optionString(sub.Options, "horse"))
		amount := optionInt(sub.Options, "amount")
		bet, err := table.AdjustBet(name, amount)
		if err != nil {
			reject(s, i, "Bet Error", rejectionText(err))
			return
		}
		d.respondBoard(s, i, fmt.Sprintf("Bet on **%s** is now **%d**.", name, bet), table.Snapshot())
	case "start":
		d.startFromCommand(s, i, table)
	case "reset":
		table.Reset()
		d.forgetBoard(i.ChannelID)
		_ = utils.SendInteractionResponse(s, i, utils.ResetEmbed(), nil, false)
	case "status":
		d.respondBoard(s, i, "", table.Snapshot())
	}
}

// HandleHorseRacingInteraction routes the board's buttons and select menu.
func (d *Derby) HandleHorseRacingInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	table := d.registry.Get(i.ChannelID)
	d.rememberBoard(i.ChannelID, i.Message.ID)

	switch {
	case data.CustomID == customPick:
		if len(data.Values) == 0 {
			return
		}
		idx, err := strconv.Atoi(data.Values[0])
		if err == nil {
			_, err = table.SelectHorse(idx)
		}
		if err != nil {
			reject(s, i, "Bet Error", rejectionText(err))
			return
		}
		d.updateBoard(s, i, "", table.Snapshot())
	case strings.HasPrefix(data.CustomID, customBet):
		delta, err := strconv.ParseInt(strings.TrimPrefix(data.CustomID, customBet), 10, 64)
		if err != nil {
			return
		}
		pick, ok := table.Game().Pick()
		if !ok {
			reject(s, i, "Bet Error", "Pick a horse from the menu first.")
			return
		}
		if _, err := table.AdjustBet(pick.Name, delta); err != nil {
			reject(s, i, "Bet Error", rejectionText(err))
			return
		}
		d.updateBoard(s, i, "", table.Snapshot())
	case data.CustomID == customStart:
		d.startFromComponent(s, i, table)
	case data.CustomID == customReset:
		table.Reset()
		_ = utils.UpdateComponentInteraction(s, i, utils.ResetEmbed(), boardComponents(table.Snapshot()))
	}
}

func (d *Derby) startFromCommand(s *discordgo.Session, i *discordgo.InteractionCreate, table *Table) {
	events, unsubscribe := table.Subscribe(16)
	if _, err := table.Start(context.Background()); err != nil {
		unsubscribe()
		if errors.Is(err, ErrRaceInProgress) {
			d.respondBoardEphemeral(s, i, table.Snapshot())
			return
		}
		reject(s, i, "🏇 Derby", rejectionText(err))
		return
	}
	st := table.Snapshot()
	if err := utils.SendInteractionResponse(s, i, raceEmbed(st.Horses, utils.RaceStartMessage), boardComponents(st), false); err != nil {
		unsubscribe()
		return
	}
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil || msg == nil {
		utils.BotWarnf("DERBY", "Could not fetch race message in %s: %v", i.ChannelID, err)
		unsubscribe()
		return
	}
	d.rememberBoard(i.ChannelID, msg.ID)
	go d.renderRace(s, i.ChannelID, msg.ID, events, unsubscribe)
}

func (d *Derby) startFromComponent(s *discordgo.Session, i *discordgo.InteractionCreate, table *Table) {
	events, unsubscribe := table.Subscribe(16)
	if _, err := table.Start(context.Background()); err != nil {
		unsubscribe()
		if errors.Is(err, ErrRaceInProgress) {
			_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
			return
		}
		reject(s, i, "🏇 Derby", rejectionText(err))
		return
	}
	st := table.Snapshot()
	if err := utils.UpdateComponentInteraction(s, i, raceEmbed(st.Horses, utils.RaceStartMessage), boardComponents(st)); err != nil {
		utils.BotWarnf("DERBY", "Race start update failed in %s: %v", i.ChannelID, err)
	}
	go d.renderRace(s, i.ChannelID, i.Message.ID, events, unsubscribe)
}

// renderRace edits the race message while the race runs, at most once per
// render interval, and always for the final result.
func (d *Derby) renderRace(s *discordgo.Session, channelID, messageID string, events <-chan Event, unsubscribe func()) {
	defer unsubscribe()
	ctx := context.Background()
	var lastRender time.Time
	for ev := range events {
		switch ev.Kind {
		case EventFrame:
			if time.Since(lastRender) < d.renderInterval {
				continue
			}
			lastRender = time.Now()
			views := make([]HorseView, 0, len(ev.Frame.Positions))
			for _, p := range ev.Frame.Positions {
				views = append(views, HorseView{Name: p.Name, TypeName: p.TypeName, Position: p.Position, Finished: p.Finished})
			}
			if err := utils.EditChannelMessage(ctx, s, channelID, messageID, raceEmbed(views, commentaryFor(ev.Frame.Positions)), nil, 0); err != nil {
				utils.BotWarnf("DERBY", "Frame render failed: %v", err)
			}
		case EventFinished:
			st := d.registry.Get(channelID).Snapshot()
			if err := utils.EditChannelMessage(ctx, s, channelID, messageID, resultsEmbed(st), boardComponents(st), 2); err != nil {
				utils.BotWarnf("DERBY", "Results render failed: %v", err)
			}
			return
		case EventReset:
			return
		}
	}
}

func (d *Derby) respondBoard(s *discordgo.Session, i *discordgo.InteractionCreate, note string, st State) {
	_ = utils.SendInteractionResponse(s, i, boardEmbed(note, st), boardComponents(st), false)
	if msg, err := s.InteractionResponse(i.Interaction); err == nil && msg != nil {
		d.rememberBoard(i.ChannelID, msg.ID)
	}
}

func (d *Derby) respondBoardEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, st State) {
	_ = utils.SendInteractionResponse(s, i, boardEmbed("", st), nil, true)
}

func (d *Derby) updateBoard(s *discordgo.Session, i *discordgo.InteractionCreate, note string, st State) {
	if err := utils.UpdateComponentInteraction(s, i, boardEmbed(note, st), boardComponents(st)); err != nil {
		utils.BotWarnf("DERBY", "Board update failed in %s: %v", i.ChannelID, err)
	}
}

func (d *Derby) rememberBoard(channelID, messageID string) {
	if messageID == "" {
		return
	}
	d.mu.Lock()
	d.boards[channelID] = messageID
	d.mu.Unlock()
}

func (d *Derby) forgetBoard(channelID string) {
	d.mu.Lock()
	delete(d.boards, channelID)
	d.mu.Unlock()
}

// Board returns the last known board message in a channel.
func (d *Derby) Board(channelID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.boards[channelID]
	return id, ok
}

func reject(s *discordgo.Session, i *discordgo.InteractionCreate, title, message string) {
	_ = utils.SendInteractionResponse(s, i, utils.ErrorEmbed(title, message), nil, true)
}

func boardEmbed(note string, st State) *discordgo.MessageEmbed {
	var b strings.Builder
	if note != "" {
		b.WriteString(note + "\n\n")
	}
	b.WriteString("**Horses:**\n")
	if len(st.Horses) == 0 {
		b.WriteString("No horses entered yet. Use `/derby add`.\n")
	}
	for idx, h := range st.Horses {
		marker := ""
		if idx == st.Pick {
			marker = " ⬅️"
		}
		fmt.Fprintf(&b, "`%d.` %s **%s** (%s, %s) · Bet **%d**%s\n",
			idx+1, horseEmojis[idx%len(horseEmojis)], h.Name, h.TypeName, h.Behavior, h.Bet, marker)
	}
	fmt.Fprintf(&b, "\nUnused types: %d · Total staked: %d", st.Available, st.TotalBet)
	embed := utils.DerbyEmbed("🏇 Derby Table 🏇", b.String(), utils.ColorBetting)
	return embed
}

// boardComponents builds the controls; all betting controls are disabled while
// a race runs.
func boardComponents(st State) []discordgo.MessageComponent {
	racing := st.Status == StatusRunning
	rows := []discordgo.MessageComponent{}
	if len(st.Horses) > 0 {
		options := make([]discordgo.SelectMenuOption, 0, len(st.Horses))
		for idx, h := range st.Horses {
			options = append(options, discordgo.SelectMenuOption{
				Label:   h.Name,
				Value:   strconv.Itoa(idx),
				Default: idx == st.Pick,
			})
		}
		rows = append(rows, utils.CreateActionRow(utils.CreateSelectMenu(customPick, "Pick a horse to bet on", options, racing)))

		buttons := make([]discordgo.MessageComponent, 0, len(betSteps))
		for _, step := range betSteps {
			label := strconv.FormatInt(step, 10)
			style := discordgo.DangerButton
			if step > 0 {
				label = "+" + label
				style = discordgo.SuccessButton
			}
			buttons = append(buttons, utils.CreateButton(customBet+strconv.FormatInt(step, 10), label, style, racing || st.Pick < 0, nil))
		}
		rows = append(rows, utils.CreateActionRow(buttons...))
	}
	rows = append(rows, utils.CreateActionRow(
		utils.CreateButton(customStart, "Start Race", discordgo.PrimaryButton, racing || len(st.Horses) < MinHorses, &discordgo.ComponentEmoji{Name: "🏁"}),
		utils.CreateButton(customReset, "Reset", discordgo.SecondaryButton, false, nil),
	))
	return rows
}

func raceEmbed(horses []HorseView, text string) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("**%s**\n\n%s", text, trackDisplay(horses))
	return utils.DerbyEmbed("🏇 The Race is On! 🏇", desc, utils.ColorRacing)
}

func resultsEmbed(st State) *discordgo.MessageEmbed {
	if st.Results == nil {
		return boardEmbed("", st)
	}
	var b strings.Builder
	if w, ok := st.Results.Winner(); ok {
		fmt.Fprintf(&b, "**%s crosses the finish line first!**\n\n", w.Name)
	}
	b.WriteString(trackDisplay(st.Horses) + "\n\n")
	b.WriteString("**Race Results:**\n" + strings.Join(st.Results.Lines(), "\n") + "\n\n")
	b.WriteString("**Betting Results:**\n" + strings.Join(st.Results.BetLines(), "\n") + "\n\n")
	b.WriteString("**" + st.Results.TotalLine() + "**")
	title := "🏁 Race Finished 🏁"
	if w, ok := st.Results.Winner(); ok {
		title = fmt.Sprintf("🏁 Race Finished: %s Wins! 🏁", w.Name)
	}
	return utils.DerbyEmbed(title, b.String(), utils.ColorFinished)
}

// trackDisplay draws one ASCII lane per horse.
func trackDisplay(horses []HorseView) string {
	cells := utils.TrackCells
	rows := make([]string, 0, len(horses))
	for idx, h := range horses {
		pos := int(h.Position / FinishThreshold * float64(cells-1))
		if pos < 0 {
			pos = 0
		}
		if pos > cells-1 || h.Finished {
			pos = cells - 1
		}
		progress := strings.Repeat("=", pos)
		remain := strings.Repeat("-", cells-1-pos)
		rows = append(rows, fmt.Sprintf("`%2d.` %s `[%s>%s]` 🏁 %s", idx+1, horseEmojis[idx%len(horseEmojis)], progress, remain, h.Name))
	}
	return strings.Join(rows, "\n")
}

func commentaryFor(positions []HorsePosition) string {
	lead := 0.0
	for _, p := range positions {
		if p.Position > lead {
			lead = p.Position
		}
	}
	switch {
	case lead >= FinishThreshold*0.75:
		return "Into the final stretch, the crowd is roaring!"
	case lead >= PhaseSwitchPosition:
		return "Past the halfway mark, it's still anyone's race!"
	default:
		return "Down the backstretch they come!"
	}
}

// rejectionText turns a game error into the notice shown to the player.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, ErrRosterFull):
		return "You can only have up to 8 horses!"
	case errors.Is(err, ErrNoTypesAvailable):
		return "No more unique horse types available!"
	case errors.Is(err, ErrEmptyName):
		return "Please enter a name for the horse!"
	case errors.Is(err, ErrDuplicateName):
		return "A horse with that name is already entered."
	case errors.Is(err, ErrUnknownHorse):
		return "There is no horse with that name on the table."
	case errors.Is(err, ErrNotEnoughHorses):
		return "You need at least 2 horses to start the race!"
	case errors.Is(err, ErrNoBets):
		return "Please place at least one bet before starting the race!"
	case errors.Is(err, ErrRaceInProgress):
		return "Bets are locked while the race is running."
	default:
		return "Something went wrong."
	}
}

func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name {
			return o.StringValue()
		}
	}
	return ""
}

func optionInt(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, o := range opts {
		if o.Name == name {
			return o.IntValue()
		}
	}
	return 0
}

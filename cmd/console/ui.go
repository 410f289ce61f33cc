package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dealcraft/sales-engine/pkg/chat"
	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/report"
	"github.com/dealcraft/sales-engine/pkg/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	speakerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	narratorStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("86"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	chatPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

type turnResultMsg struct {
	resp *TurnResponse
}

type sessionMsg struct {
	session *session.Session
}

type reportMsg struct {
	report *report.Report
}

type errMsg struct {
	err error
}

type progressTickMsg time.Time

// ConsoleUI is the interactive terminal client. It renders the session
// history in a chat panel, the deal state in a side panel, and accepts
// slash commands for playing cards and advancing rounds.
type ConsoleUI struct {
	cfg     *ConsoleConfig
	client  *http.Client
	session *session.Session
	cards   []deck.Card
	report  *report.Report

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model

	width         int
	height        int
	ready         bool
	loading       bool
	loadingLabel  string
	progressFrame int
	showQuitModal bool
	lastError     string
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, s *session.Session, cards []deck.Card) *ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = "Type /help for commands..."
	ta.Focus()
	ta.SetHeight(3)
	ta.CharLimit = 500
	ta.ShowLineNumbers = false

	return &ConsoleUI{
		cfg:      cfg,
		client:   client,
		session:  s,
		cards:    cards,
		textarea: ta,
	}
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		ui.layout()
		ui.writeChatContent()
		ui.writeMetadata()
		ui.ready = true

	case tea.KeyMsg:
		if ui.showQuitModal {
			switch msg.String() {
			case "y", "Y", "enter":
				return ui, tea.Quit
			case "n", "N", "esc":
				ui.showQuitModal = false
			}
			return ui, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			ui.showQuitModal = true
			return ui, nil
		case tea.KeyEnter:
			if ui.loading {
				return ui, nil
			}
			input := strings.TrimSpace(ui.textarea.Value())
			ui.textarea.Reset()
			if input == "" {
				return ui, nil
			}
			return ui, ui.handleCommand(input)
		}

	case turnResultMsg:
		ui.loading = false
		ui.lastError = ""
		ui.session = msg.resp.Session
		ui.writeChatContent()
		ui.writeMetadata()
		ui.chatViewport.GotoBottom()

	case sessionMsg:
		ui.loading = false
		ui.lastError = ""
		ui.session = msg.session
		ui.writeChatContent()
		ui.writeMetadata()
		ui.chatViewport.GotoBottom()

	case reportMsg:
		ui.loading = false
		ui.lastError = ""
		ui.report = msg.report
		ui.writeChatContent()
		ui.chatViewport.GotoBottom()

	case errMsg:
		ui.loading = false
		ui.lastError = msg.err.Error()
		ui.writeChatContent()
		ui.chatViewport.GotoBottom()

	case progressTickMsg:
		if ui.loading {
			ui.progressFrame++
			cmds = append(cmds, progressTick())
		}
	}

	var cmd tea.Cmd
	ui.textarea, cmd = ui.textarea.Update(msg)
	cmds = append(cmds, cmd)
	ui.chatViewport, cmd = ui.chatViewport.Update(msg)
	cmds = append(cmds, cmd)
	ui.metaViewport, cmd = ui.metaViewport.Update(msg)
	cmds = append(cmds, cmd)

	return ui, tea.Batch(cmds...)
}

func (ui *ConsoleUI) layout() {
	chatWidth := ui.width * 3 / 4
	metaWidth := ui.width - chatWidth - 1
	contentHeight := ui.height - ui.textarea.Height() - 3

	if !ui.ready {
		ui.chatViewport = viewport.New(chatWidth, contentHeight)
		ui.metaViewport = viewport.New(metaWidth, contentHeight)
	} else {
		ui.chatViewport.Width = chatWidth
		ui.chatViewport.Height = contentHeight
		ui.metaViewport.Width = metaWidth
		ui.metaViewport.Height = contentHeight
	}
	ui.textarea.SetWidth(ui.width - 2)
}

func (ui *ConsoleUI) handleCommand(input string) tea.Cmd {
	if !strings.HasPrefix(input, "/") {
		ui.lastError = "Unknown input. Type /help for commands."
		ui.writeChatContent()
		return nil
	}

	fields := strings.Fields(input)
	switch fields[0] {
	case "/help":
		ui.lastError = ""
		ui.appendNotice(helpText)
		return nil

	case "/cards":
		ui.lastError = ""
		ui.appendNotice(ui.renderCardList())
		return nil

	case "/play":
		if len(fields) < 2 {
			ui.lastError = "Usage: /play <card_id> [npc_id]"
			ui.writeChatContent()
			return nil
		}
		req := TurnRequest{CardID: fields[1]}
		if len(fields) > 2 {
			req.TargetNPCID = fields[2]
		}
		ui.startLoading("Resolving turn")
		return tea.Batch(ui.playTurnCmd(req), progressTick())

	case "/round":
		ui.startLoading("Starting next round")
		return tea.Batch(ui.advanceRoundCmd(), progressTick())

	case "/refresh":
		ui.startLoading("Refreshing session")
		return tea.Batch(ui.refreshCmd(), progressTick())

	case "/report":
		ui.startLoading("Analyzing session")
		return tea.Batch(ui.reportCmd(), progressTick())

	case "/quit":
		ui.showQuitModal = true
		return nil

	default:
		ui.lastError = fmt.Sprintf("Unknown command %q. Type /help for commands.", fields[0])
		ui.writeChatContent()
		return nil
	}
}

const helpText = `Commands:
  /cards              List cards playable in the current stage
  /play <card> [npc]  Play a card, optionally targeting an NPC
  /round              End the current round and start the next
  /refresh            Reload the session from the server
  /report             Fetch the post-game analysis (finished sessions)
  /quit               Exit`

func (ui *ConsoleUI) startLoading(label string) {
	ui.loading = true
	ui.loadingLabel = label
	ui.lastError = ""
	ui.progressFrame = 0
}

func (ui *ConsoleUI) playTurnCmd(req TurnRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := playTurn(ui.client, ui.cfg.APIBaseURL, ui.session.ID, req)
		if err != nil {
			return errMsg{err}
		}
		return turnResultMsg{resp}
	}
}

func (ui *ConsoleUI) advanceRoundCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := advanceRound(ui.client, ui.cfg.APIBaseURL, ui.session.ID)
		if err != nil {
			return errMsg{err}
		}
		return sessionMsg{s}
	}
}

func (ui *ConsoleUI) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := getSession(ui.client, ui.cfg.APIBaseURL, ui.session.ID)
		if err != nil {
			return errMsg{err}
		}
		return sessionMsg{s}
	}
}

func (ui *ConsoleUI) reportCmd() tea.Cmd {
	return func() tea.Msg {
		rep, err := getReport(ui.client, ui.cfg.APIBaseURL, ui.session.ID)
		if err != nil {
			return errMsg{err}
		}
		return reportMsg{rep}
	}
}

func progressTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func (ui *ConsoleUI) appendNotice(text string) {
	ui.chatViewport.SetContent(ui.chatContent() + "\n" + promptStyle.Render(text) + "\n")
	ui.chatViewport.GotoBottom()
}

func (ui *ConsoleUI) writeChatContent() {
	ui.chatViewport.SetContent(ui.chatContent())
}

func (ui *ConsoleUI) chatContent() string {
	var b strings.Builder
	wrapWidth := ui.chatViewport.Width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	b.WriteString(titleStyle.Render(ui.session.Project.Title))
	b.WriteString("\n\n")

	for _, entry := range ui.session.History {
		b.WriteString(renderEntry(entry, ui.session, wrapWidth))
		b.WriteString("\n\n")
	}

	if ui.report != nil {
		b.WriteString(titleStyle.Render("Deal Review"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Logic %.0f | Empathy %.0f | Closing %.0f\n\n",
			ui.report.Scores.Logic, ui.report.Scores.Empathy, ui.report.Scores.Closing))
		b.WriteString(wordwrap.String(ui.report.FeedbackMD, wrapWidth))
		b.WriteString("\n\n")
	}

	if ui.lastError != "" {
		b.WriteString(errorStyle.Render("Error: " + ui.lastError))
		b.WriteString("\n")
	}

	return b.String()
}

func renderEntry(entry chat.Entry, s *session.Session, wrapWidth int) string {
	wrapped := wordwrap.String(entry.Content, wrapWidth)

	switch entry.Role {
	case chat.RoleUser:
		return userStyle.Render("You: ") + wrapped
	case chat.RoleAgent:
		name := "???"
		if entry.Metadata != nil && entry.Metadata.NPCID != "" {
			if npc, ok := s.NPCs.Get(entry.Metadata.NPCID); ok {
				name = npc.Name
			}
		}
		return speakerStyle.Render(name+": ") + wrapped
	default:
		if entry.Metadata != nil && entry.Metadata.Type == chat.EntryNarrative {
			return narratorStyle.Render(wrapped)
		}
		return promptStyle.Render(wrapped)
	}
}

func (ui *ConsoleUI) renderCardList() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Cards playable in %s:\n", ui.session.Stage))
	for _, c := range ui.cards {
		if !c.AvailableIn(ui.session.Stage) {
			continue
		}
		target := ""
		if c.TargetRequired {
			target = " (needs target)"
		}
		b.WriteString(fmt.Sprintf("  %-20s %d AP%s  %s\n", c.ID, c.Cost, target, c.Description))
	}
	return b.String()
}

func (ui *ConsoleUI) writeMetadata() {
	var b strings.Builder
	s := ui.session

	b.WriteString(titleStyle.Render("Deal State"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Round:  %d / %d\n", s.Round, s.MaxRounds))
	b.WriteString(fmt.Sprintf("AP:     %d / %d\n", s.ActionPoints, s.MaxActionPoints))
	b.WriteString(fmt.Sprintf("Stage:  %s\n", s.Stage))
	b.WriteString(fmt.Sprintf("Status: %s\n", s.Status))
	b.WriteString(fmt.Sprintf("Pitch:  %.0f/100\n", s.Solution.QualityScore))

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Stakeholders"))
	b.WriteString("\n")
	for _, npc := range s.NPCs.All() {
		marker := " "
		if npc.IsKeyDecisionMaker {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s %s (%s)\n   %s, trust %.1f [%s]\n",
			marker, npc.Name, npc.ID, npc.Role, npc.Trust, npc.Tier))
	}

	if s.Opportunities.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Opportunities"))
		b.WriteString("\n")
		for _, o := range s.Opportunities.All() {
			if o.Status == session.OpportunityUnrevealed {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s [%s]\n", o.Title, o.Status))
		}
	}

	ui.metaViewport.SetContent(b.String())
}

func (ui *ConsoleUI) renderProgressBar() string {
	frames := []string{"|", "/", "-", "\\"}
	frame := frames[ui.progressFrame%len(frames)]
	return loadingStyle.Render(fmt.Sprintf("%s %s...", frame, ui.loadingLabel))
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	if ui.showQuitModal {
		modal := modalStyle.Render("Leave the negotiation?\n\n[y] yes   [n] no")
		return lipgloss.Place(ui.width, ui.height, lipgloss.Center, lipgloss.Center, modal)
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		chatPanelStyle.Render(ui.chatViewport.View()),
		ui.metaViewport.View())

	statusLine := promptStyle.Render("ctrl+c to quit | /help for commands")
	if ui.loading {
		statusLine = ui.renderProgressBar()
	}

	return fmt.Sprintf("%s\n%s\n%s", panels, statusLine, ui.textarea.View())
}

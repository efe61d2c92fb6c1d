// Package tui implements the interactive chat interface: a terminal
// stand-in for the messaging transport, wired straight into the
// dispatcher.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/pbarbosa/finbot/internal/dispatch"
	"github.com/pbarbosa/finbot/internal/model"
)

// attachCommand queues a local file as the next message's receipt photo.
const attachCommand = "/anexar"

// Config holds everything the chat surface needs to run.
type Config struct {
	Dispatcher     *dispatch.Dispatcher
	ConversationID string
	AttachmentsDir string
}

type replyMsg struct {
	reply model.Reply
}

type attachedMsg struct {
	ref string
	err error
}

// Model holds the chat TUI state.
type Model struct {
	dispatcher         *dispatch.Dispatcher
	conversationID     string
	attachmentsDir     string
	viewport           viewport.Model
	textarea           textarea.Model
	spinner            spinner.Model
	transcript         []string
	pendingAttachments []string
	width              int
	height             int
	waiting            bool
	ready              bool
	quitting           bool
}

func newModel(cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Escreva sua mensagem... (/anexar <arquivo> para juntar um comprovante)"
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		dispatcher:     cfg.Dispatcher,
		conversationID: cfg.ConversationID,
		attachmentsDir: cfg.AttachmentsDir,
		textarea:       ta,
		spinner:        sp,
		transcript:     []string{botStyle.Render("FinanceBot") + ": Olá! 👋 Envie uma mensagem para começar."},
	}
}

// Run starts the chat interface and blocks until the user quits.
func Run(cfg Config) error {
	program := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chromeHeight := m.textarea.Height() + 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chromeHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				return m, nil
			}
			m.textarea.Reset()

			if path, ok := strings.CutPrefix(text, attachCommand+" "); ok {
				return m, m.attachFile(strings.TrimSpace(path))
			}

			m.appendUserLine(text)
			attachments := m.pendingAttachments
			m.pendingAttachments = nil
			m.waiting = true
			cmds = append(cmds, m.sendMessage(text, attachments), m.spinner.Tick)
		}

	case attachedMsg:
		if msg.err != nil {
			m.appendLine(errorStyle.Render(fmt.Sprintf("Falha ao anexar: %v", msg.err)))
		} else {
			m.pendingAttachments = append(m.pendingAttachments, msg.ref)
			m.appendLine(attachmentStyle.Render("📎 Comprovante anexado. Ele será enviado junto com a próxima mensagem."))
		}

	case replyMsg:
		m.waiting = false
		for _, segment := range msg.reply.Segments {
			switch segment.Kind {
			case model.SegmentText:
				m.appendBotLine(segment.Text)
			case model.SegmentImage:
				m.appendLine(attachmentStyle.Render("📎 [comprovante] " + segment.Ref))
			}
		}

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.quitting {
		return "Até logo! 👋\n"
	}
	if !m.ready {
		return "Carregando..."
	}

	status := helpStyle.Render("enter: enviar • esc: sair")
	if m.waiting {
		status = m.spinner.View() + " pensando..."
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		titleStyle.Render("💰 FinanceBot"),
		m.viewport.View(),
		m.textarea.View(),
		status,
	)
}

// sendMessage runs the dispatcher off the UI goroutine; HandleMessage
// never errors, it always produces a reply.
func (m Model) sendMessage(text string, attachments []string) tea.Cmd {
	dispatcher := m.dispatcher
	conversationID := m.conversationID
	return func() tea.Msg {
		reply := dispatcher.HandleMessage(context.Background(), dispatch.Inbound{
			ConversationID: conversationID,
			Text:           text,
			Attachments:    attachments,
		})
		return replyMsg{reply: reply}
	}
}

// attachFile copies the file into the attachments directory under a fresh
// ref so the original can be moved or deleted afterwards.
func (m Model) attachFile(path string) tea.Cmd {
	dir := m.attachmentsDir
	return func() tea.Msg {
		ref, err := copyAttachment(dir, path)
		return attachedMsg{ref: ref, err: err}
	}
}

func copyAttachment(dir, path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	ref := uuid.NewString() + filepath.Ext(path)
	dst, err := os.Create(filepath.Join(dir, ref))
	if err != nil {
		return "", err
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return ref, nil
}

func (m *Model) appendUserLine(text string) {
	m.appendLine(userStyle.Render("Você") + ": " + text)
}

func (m *Model) appendBotLine(text string) {
	m.appendLine(botStyle.Render("FinanceBot") + ": " + text)
}

func (m *Model) appendLine(line string) {
	m.transcript = append(m.transcript, line)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

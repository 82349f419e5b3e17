// Package tui provides a Bubble Tea terminal user interface for artcache.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/artcache/internal/catalog"
	"github.com/handiism/artcache/internal/config"
	"github.com/handiism/artcache/internal/download"
	"github.com/handiism/artcache/internal/logging"
	"github.com/handiism/artcache/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxListedGames caps how many games the views list.
const maxListedGames = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateLoading
	StateDownloading
	StateComplete
	StateError
)

// Options configures the TUI.
type Options struct {
	// ManifestPath pre-fills the manifest input.
	ManifestPath string

	// OutputPath receives the manifest with local paths when writing
	// results is enabled. Empty means the input manifest is updated.
	OutputPath string

	// Settings for the download pipeline. Nil means defaults.
	Settings *config.Settings
}

// tracker holds the latest progress reported by the pipeline. The UI polls
// it on every tick.
type tracker struct {
	mu sync.Mutex
	p  download.Progress
}

func (t *tracker) set(p download.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p = p
}

func (t *tracker) get() download.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	err       error

	outputPath   string
	writeResults bool

	games   []*model.Game
	current download.Progress
	summary download.Summary
	saved   string

	// Download context
	ctx     context.Context
	cancel  context.CancelFunc
	tracker *tracker

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "games.json"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.SetValue(opts.ManifestPath)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateInput,
		textInput:  ti,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		outputPath: opts.OutputPath,
		ctx:        ctx,
		cancel:     cancel,
		tracker:    &tracker{},
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// LoadedMsg is sent when the manifest is read and the pipeline is ready.
	LoadedMsg struct {
		Games   []*model.Game
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when every job has finished.
	DownloadDoneMsg struct {
		Summary download.Summary
		Saved   string
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateLoading {
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateLoading
				return m, tea.Batch(loadManifest(strings.TrimSpace(m.textInput.Value()), m.settings), m.spinner.Tick)
			}

		case "ctrl+w":
			if m.state == StateInput {
				m.writeResults = !m.writeResults
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.games = nil
				m.err = nil
				m.current = download.Progress{}
				m.summary = download.Summary{}
				m.saved = ""
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.tracker = &tracker{}
				m.textInput.Focus()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case LoadedMsg:
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case m.ctx.Err() != nil:
			_ = msg.Manager.Close()
			m.state = StateError
			m.err = errCancelled
		default:
			m.games = msg.Games
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(msg.Manager), tickProgress())
		}

	case DownloadDoneMsg:
		m.summary = msg.Summary
		m.saved = msg.Saved
		m.current = download.Progress{Processed: msg.Summary.Total, Total: msg.Summary.Total}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateDownloading {
			m.current = m.tracker.get()
			cmds = append(cmds, m.progress.SetPercent(m.current.Fraction()), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Game Artwork Cache"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download posters and backgrounds for your library"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateLoading:
		b.WriteString(m.viewLoading())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Game manifest:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	writeCheck := "[ ]"
	if m.writeResults {
		writeCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Write local paths back to manifest (ctrl+w)\n", writeCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Cache: %s", m.settings.CacheDir)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Concurrent downloads: %d", m.settings.Concurrency())))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewLoading() string {
	return m.spinner.View() + " " + subtitleStyle.Render("Reading manifest...") + "\n"
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d game(s)", len(m.games))))
	b.WriteString("\n")
	b.WriteString(m.renderGames(false))
	b.WriteString("\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Images: %d/%d", m.current.Processed, m.current.Total)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	summary := fmt.Sprintf(
		"Download Complete!\n\n"+
			"Games: %d\n"+
			"Images: %d\n"+
			"Ready: %d\n"+
			"Missing or failed: %d",
		len(m.games),
		m.summary.Total,
		m.summary.Succeeded,
		m.summary.Failed,
	)
	if m.saved != "" {
		summary += "\nSaved: " + m.saved
	}
	b.WriteString(boxStyle.Render(summary))
	b.WriteString("\n\n")
	b.WriteString(m.renderGames(true))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n")
	}
	if m.summary.Total > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d of %d images finished before stopping",
			m.summary.Succeeded, m.summary.Total)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderGames lists up to maxListedGames games. With results it marks
// whether each has a poster and how many backgrounds it received.
func (m Model) renderGames(results bool) string {
	var b strings.Builder

	for i, g := range m.games {
		if i == maxListedGames {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(m.games)-i)))
			b.WriteString("\n")
			break
		}
		if !results {
			b.WriteString(gameStyle.Render("  " + g.Name))
			b.WriteString("\n")
			continue
		}

		heroes := len(g.HeroPaths())
		line := fmt.Sprintf("  %s  poster:%s  backgrounds:%d/%d", g.Name, mark(g.PosterPath() != ""), heroes, len(g.HeroURLs))
		switch {
		case g.PosterPath() == "" && heroes == 0:
			b.WriteString(errorStyle.Render(line))
		case g.PosterPath() == "" || heroes < len(g.HeroURLs):
			b.WriteString(warningStyle.Render(line))
		default:
			b.WriteString(successStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+w: write results • esc: quit"
	case StateLoading, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// loadManifest reads the manifest and builds the pipeline.
func loadManifest(path string, settings *config.Settings) tea.Cmd {
	return func() tea.Msg {
		games, err := catalog.Load(path)
		if err != nil {
			return LoadedMsg{Err: err}
		}

		// Log output would corrupt the alternate screen.
		manager, err := download.NewManager(settings, download.WithLogger(logging.Discard()))
		if err != nil {
			return LoadedMsg{Err: err}
		}

		return LoadedMsg{Games: games, Manager: manager}
	}
}

// startDownload runs the pipeline in the background.
func (m Model) startDownload(manager *download.Manager) tea.Cmd {
	ctx, games, t := m.ctx, m.games, m.tracker
	out := ""
	if m.writeResults {
		out = m.outputPath
		if out == "" {
			out = strings.TrimSpace(m.textInput.Value())
		}
	}

	return func() tea.Msg {
		defer manager.Close()

		summary := manager.DownloadAll(ctx, games, t.set)
		if out == "" || ctx.Err() != nil {
			return DownloadDoneMsg{Summary: summary}
		}
		if err := catalog.Save(out, games); err != nil {
			return DownloadDoneMsg{Summary: summary, Err: fmt.Errorf("save results: %w", err)}
		}
		return DownloadDoneMsg{Summary: summary, Saved: out}
	}
}

// Run starts the TUI application.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Package tui provides an interactive search prompt for quarry.
// It implements a driving adapter: typing produces debounced query
// suggestions, enter runs a search, and stale async results are
// discarded so the view never shows answers to a superseded input.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
)

// debounceDelay is how long input must be idle before suggestions fire.
const debounceDelay = 300 * time.Millisecond

// maxVisibleResults caps the rendered result list.
const maxVisibleResults = 8

// Styles for the prompt.
var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	scoreStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	snippetStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

// Messages produced by async commands.
type (
	// debounceElapsed fires when the input has been idle; the token
	// identifies which edit it belongs to.
	debounceElapsed struct{ token int }

	// suggestionsReady carries suggestions for one request token.
	suggestionsReady struct {
		token       int
		suggestions []domain.Suggestion
	}

	// searchDone carries search results for one request token.
	searchDone struct {
		token   int
		results []domain.ScoredResult
		err     error
	}
)

// Model is the bubbletea model for the search prompt.
type Model struct {
	input   textinput.Model
	search  driving.SearchService
	suggest driving.SuggestionService
	ctx     context.Context

	// requestToken identifies the latest edit. Async replies carrying
	// an older token are stale and dropped.
	requestToken int

	suggestions []domain.Suggestion
	selected    int
	results     []domain.ScoredResult
	searching   bool
	err         error
	quitting    bool
}

// NewModel creates the prompt model.
func NewModel(ctx context.Context, search driving.SearchService, suggest driving.SuggestionService) Model {
	input := textinput.New()
	input.Placeholder = "type to search"
	input.Prompt = "> "
	input.Focus()

	return Model{
		input:    input,
		search:   search,
		suggest:  suggest,
		ctx:      ctx,
		selected: -1,
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case debounceElapsed:
		// Only the newest edit's timer triggers a request.
		if msg.token != m.requestToken {
			return m, nil
		}
		return m, m.fetchSuggestions(msg.token, m.input.Value())

	case suggestionsReady:
		if msg.token != m.requestToken {
			return m, nil
		}
		m.suggestions = msg.suggestions
		m.selected = -1
		return m, nil

	case searchDone:
		if msg.token != m.requestToken {
			return m, nil
		}
		m.searching = false
		m.results = msg.results
		m.err = msg.err
		return m, nil
	}

	return m.handleInput(msg)
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyDown:
		if len(m.suggestions) > 0 {
			m.selected = (m.selected + 1) % len(m.suggestions)
		}
		return m, nil

	case tea.KeyUp:
		if len(m.suggestions) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.suggestions) - 1
			}
		}
		return m, nil

	case tea.KeyTab:
		// Accept the highlighted suggestion into the input.
		if m.selected >= 0 && m.selected < len(m.suggestions) {
			chosen := m.suggestions[m.selected]
			m.input.SetValue(chosen.Text)
			m.input.CursorEnd()
			return m.bumpToken(), m.recordSelection(chosen.Text)
		}
		return m, nil

	case tea.KeyEnter:
		query := m.input.Value()
		if m.selected >= 0 && m.selected < len(m.suggestions) {
			query = m.suggestions[m.selected].Text
			m.input.SetValue(query)
			m.input.CursorEnd()
		}
		next := m.bumpToken()
		next.searching = true
		next.suggestions = nil
		next.selected = -1
		return next, next.runSearch(next.requestToken, query)

	default:
		return m.handleInput(msg)
	}
}

// handleInput forwards a message to the text input and, when the text
// changed, restarts the debounce timer with a fresh token.
func (m Model) handleInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() == before {
		return m, cmd
	}

	next := m.bumpToken()
	token := next.requestToken
	debounce := tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceElapsed{token: token}
	})
	return next, tea.Batch(cmd, debounce)
}

// bumpToken invalidates every in-flight async request.
func (m Model) bumpToken() Model {
	m.requestToken++
	return m
}

// fetchSuggestions asks the suggestion engine for the current input.
func (m Model) fetchSuggestions(token int, partial string) tea.Cmd {
	if m.suggest == nil {
		return nil
	}
	ctx, suggest := m.ctx, m.suggest
	return func() tea.Msg {
		suggestions, err := suggest.Suggest(ctx, partial, domain.SuggestOptions{})
		if err != nil {
			// Suggestions degrade silently; search still works.
			return suggestionsReady{token: token}
		}
		return suggestionsReady{token: token, suggestions: suggestions}
	}
}

// runSearch executes a search for the query.
func (m Model) runSearch(token int, query string) tea.Cmd {
	if m.search == nil {
		return nil
	}
	ctx, search := m.ctx, m.search
	return func() tea.Msg {
		results, err := search.Search(ctx, query, domain.SearchOptions{})
		return searchDone{token: token, results: results, err: err}
	}
}

// recordSelection feeds an accepted suggestion back into history.
func (m Model) recordSelection(text string) tea.Cmd {
	if m.suggest == nil {
		return nil
	}
	ctx, suggest := m.ctx, m.suggest
	return func() tea.Msg {
		_ = suggest.RecordSelection(ctx, text)
		return nil
	}
}

// View renders the prompt.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	out := titleStyle.Render("quarry") + "\n\n"
	out += m.input.View() + "\n"

	for i, s := range m.suggestions {
		line := "  " + s.Text + "  (" + string(s.Type) + ")"
		if i == m.selected {
			out += selectedStyle.Render("▸"+line[1:]) + "\n"
		} else {
			out += suggestionStyle.Render(line) + "\n"
		}
	}

	switch {
	case m.searching:
		out += "\nSearching...\n"
	case m.err != nil:
		out += "\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case m.results != nil:
		out += "\n" + m.renderResults()
	}

	out += "\n" + helpStyle.Render("↑/↓ select · tab accept · enter search · esc quit") + "\n"
	return out
}

// renderResults renders the scored result list.
func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "No results.\n"
	}

	out := ""
	shown := m.results
	if len(shown) > maxVisibleResults {
		shown = shown[:maxVisibleResults]
	}
	for i := range shown {
		r := &shown[i]
		title := r.Document.Title
		if title == "" {
			title = r.Document.ID
		}
		out += scoreStyle.Render(fmt.Sprintf("[%.2f]", r.CombinedScore)) + " " + title + "\n"
		out += snippetStyle.Render("    "+truncate(r.Chunk.Content, 100)) + "\n"
	}
	return out
}

// truncate shortens content to a single displayable line.
func truncate(content string, maxRunes int) string {
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes]) + "…"
}

// Run starts the interactive prompt and blocks until it exits.
func Run(ctx context.Context, search driving.SearchService, suggest driving.SuggestionService) error {
	program := tea.NewProgram(NewModel(ctx, search, suggest))
	_, err := program.Run()
	return err
}

package tui

import (
	"fmt"
	"strings"

	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/icon"
	"github.com/vibe-audio/vibe/playback"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
	playerStyle           = lipgloss.NewStyle().Padding(0, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case libraryState:
		output = listExtraPaddingStyle.Render(b.libraryC.View())
	case historyState:
		output = listExtraPaddingStyle.Render(b.historyC.View())
	case chaptersState:
		output = listExtraPaddingStyle.Render(b.chaptersC.View())
	case bookmarksState:
		output = listExtraPaddingStyle.Render(b.marksC.View())
	case searchState:
		output = b.viewSearch()
	case noteState:
		output = b.viewNote()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	if player := b.viewPlayer(); player != "" && b.state != errorState && b.state != loadingState {
		output = lipgloss.JoinVertical(lipgloss.Left, output, player)
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " Fetching the library",
		},
	)
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search Books"),
		"",
		b.inputC.View(),
	}

	if s, ok := b.searchSuggestion.Get(); ok && s != strings.ToLower(strings.TrimSpace(b.inputC.Value())) {
		lines = append(lines, "", style.Faint(fmt.Sprintf("%s %s", icon.Get(icon.Search), s)))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewNote() string {
	chapter, _ := b.options.Engine.Chapter()

	lines := []string{
		style.Title("New Bookmark"),
		"",
		fmt.Sprintf("%s at %s", style.Fg(color.Purple)(chapter.Name), util.FormatTime(b.options.Engine.Position())),
		"",
		b.noteC.View(),
		"",
		style.Faint("(Enter to save, Esc to cancel)"),
	}

	return b.renderLines(false, lines)
}

// viewPlayer draws the now playing line, the progress bar and the spectrum.
func (b *statefulBubble) viewPlayer() string {
	engine := b.options.Engine
	book := engine.Book()
	if book == nil {
		return ""
	}

	chapter, _ := engine.Chapter()

	var status string
	switch engine.State() {
	case playback.Playing:
		status = icon.Get(icon.Play)
	case playback.Loading, playback.Recovering:
		status = b.spinnerC.View()
	default:
		status = icon.Get(icon.Pause)
	}

	title := fmt.Sprintf(
		"%s %s %s",
		status,
		style.Bold(book.Title),
		style.Faint(fmt.Sprintf("%d/%d %s", engine.ChapterIndex()+1, len(book.Chapters), chapter.Name)),
	)

	position, duration := engine.Position(), engine.Duration()
	var ratio float64
	if duration > 0 {
		ratio = util.Clamp(position/duration, 0, 1)
	}

	extras := []string{fmt.Sprintf("%gx", engine.Rate())}
	if remaining, ok := engine.SleepRemaining(); ok {
		extras = append(extras, fmt.Sprintf("%s %s", icon.Get(icon.Sleep), util.FormatTime(remaining.Seconds())))
	}

	bar := fmt.Sprintf(
		"%s %s %s  %s",
		util.FormatTime(position),
		b.progressC.ViewAs(ratio),
		util.FormatTime(duration),
		style.Fg(color.Orange)(strings.Join(extras, "  ")),
	)

	lines := []string{style.Truncate(b.width)(title), bar}

	if v := b.options.Visualizer; v != nil && b.showVisualizer && engine.Analysable() {
		lines = append(lines, v.Render(b.width, visualizerHeight))
	}

	return playerStyle.Render(strings.Join(lines, "\n"))
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	errorMsg := wrap.String(errorStyle.Render(b.lastErr.Error()), b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " The library could not be loaded:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if pad := b.height - h - b.playerHeight(); pad > 0 {
			l += strings.Repeat("\n", pad)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

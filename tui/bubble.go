package tui

import (
	"context"
	"time"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/internal/ui"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/playback"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

const (
	miniPlayerHeight = 3
	visualizerHeight = 6
)

// bridge collects what the engine reports between two updates.
type bridge struct {
	changes playback.Change
	notices []playback.Notice
}

func (br *bridge) Changed(c playback.Change) { br.changes |= c }
func (br *bridge) Notice(n playback.Notice)  { br.notices = append(br.notices, n) }

// statefulBubble encapsulates the application state, including component models and navigation.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	inputC    textinput.Model
	noteC     textinput.Model
	libraryC  list.Model
	historyC  list.Model
	chaptersC list.Model
	marksC    list.Model
	progressC progress.Model
	helpC     help.Model

	library    *catalog.Library
	category   int
	searchTerm string

	searchSuggestion mo.Option[string]
	showVisualizer   bool

	bridge   *bridge
	notifier *ui.Model
	lastErr  error

	ctx    context.Context
	cancel context.CancelFunc

	width, height int
	termW, termH  int

	options *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	log.Error(err)
	b.lastErr = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState moves to s, remembering where we came from unless that was a transient state.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if !lo.Contains([]state{loadingState, noteState, searchState}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) playerHeight() int {
	if b.options.Engine.Book() == nil {
		return 0
	}

	h := miniPlayerHeight
	if b.showVisualizer && b.options.Engine.Analysable() {
		h += visualizerHeight
	}
	return h
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	b.termW, b.termH = width, height

	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y

	listWidth := width - xx
	listHeight := util.Max(height-yy-b.playerHeight(), 3)

	for _, l := range []*list.Model{&b.libraryC, &b.historyC, &b.chaptersC, &b.marksC} {
		l.SetSize(listWidth, listHeight)
		l.Help.Width = listWidth
	}

	b.progressC.Width = util.Max(b.width-24, 10)
	b.inputC.Width = listWidth
	b.noteC.Width = listWidth
	b.helpC.Width = listWidth

	if b.options.Visualizer != nil {
		b.options.Visualizer.SetSize(b.width, visualizerHeight)
	}
}

// relayout recomputes sizes after the player area grew or shrank.
func (b *statefulBubble) relayout() {
	if b.termW > 0 {
		b.resize(b.termW, b.termH)
	}
}

func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	return b.spinnerC.Tick
}

func (b *statefulBubble) stopLoading() {
	b.loading = false
}

// shutdown releases what the session holds once the program exits.
func (b *statefulBubble) shutdown() {
	b.cancel()
	if b.options.Visualizer != nil {
		b.options.Visualizer.Stop()
	}
	if err := b.options.Engine.Close(); err != nil {
		log.Warnf("close engine: %s", err)
	}
}

func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory:  util.Stack[state]{},
		keymap:         keymap,
		bridge:         &bridge{},
		notifier:       &ui.Model{},
		showVisualizer: options.Visualizer != nil,
		options:        options,
	}
	bubble.ctx, bubble.cancel = context.WithCancel(context.Background())

	options.Engine.SetObserver(bubble.bridge)

	type listOptions struct {
		TitleStyle mo.Option[lipgloss.Style]
	}

	makeList := func(title string, description bool, options *listOptions) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
		delegate.ShowDescription = description
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		if titleStyle, ok := options.TitleStyle.Get(); ok {
			listC.Styles.Title = titleStyle
		}
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetFilteringEnabled(false)
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = "Search books (v" + constant.Version + ")"
	bubble.inputC.CharLimit = 60
	bubble.inputC.Prompt = viper.GetString(key.TUISearchPromptString)

	bubble.noteC = textinput.New()
	bubble.noteC.Placeholder = "What happens here?"
	bubble.noteC.CharLimit = 120
	bubble.noteC.Prompt = "Note: "

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.libraryC = makeList("Library", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.AccentColor).Padding(0, 1),
		),
	})
	bubble.libraryC.SetStatusBarItemName("book", "books")

	bubble.historyC = makeList("History", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Yellow).Padding(0, 1),
		),
	})
	bubble.historyC.SetStatusBarItemName("entry", "entries")

	bubble.chaptersC = makeList("Chapters", viper.GetBool(key.TUIShowURLs), &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Peach).Padding(0, 1),
		),
	})
	bubble.chaptersC.SetStatusBarItemName("chapter", "chapters")

	bubble.marksC = makeList("Bookmarks", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Blue).Padding(0, 1),
		),
	})
	bubble.marksC.SetStatusBarItemName("bookmark", "bookmarks")

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.setState(loadingState)
	return &bubble
}

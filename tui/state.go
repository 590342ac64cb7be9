package tui

type state int

const (
	loadingState state = iota
	errorState
	libraryState
	historyState
	searchState
	chaptersState
	bookmarksState
	noteState
)

func (s state) String() string {
	switch s {
	case loadingState:
		return "loading"
	case errorState:
		return "error"
	case libraryState:
		return "library"
	case historyState:
		return "history"
	case searchState:
		return "search"
	case chaptersState:
		return "chapters"
	case bookmarksState:
		return "bookmarks"
	case noteState:
		return "note"
	default:
		return "unknown"
	}
}

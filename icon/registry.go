package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Progress
	Play
	Pause
	Bookmark
	Chapter
	Book
	History
	Search
	Mark
	Warn
	Sleep
	Visualizer
	Link
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(×_×)",
		squares: "▣",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "OK",
		kaomoji: "(ᵔᴥᵔ)",
		squares: "■",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・_・ヾ",
		squares: "□",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "♪(´▽｀)",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "‖",
	},
	Bookmark: {
		emoji:   "🔖",
		nerd:    "",
		plain:   "#",
		kaomoji: "φ(．．)",
		squares: "◆",
	},
	Chapter: {
		emoji:   "📄",
		nerd:    "",
		plain:   "-",
		kaomoji: "(￣▽￣)ノ",
		squares: "▪",
	},
	Book: {
		emoji:   "📚",
		nerd:    "",
		plain:   "B",
		kaomoji: "(⌐■_■)",
		squares: "▤",
	},
	History: {
		emoji:   "🕰️",
		nerd:    "",
		plain:   "H",
		kaomoji: "(・・?)",
		squares: "◷",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   "?",
		kaomoji: "(・ω・)",
		squares: "◎",
	},
	Mark: {
		emoji:   "⭐",
		nerd:    "",
		plain:   "*",
		kaomoji: "☆",
		squares: "★",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(°ロ°)",
		squares: "▲",
	},
	Sleep: {
		emoji:   "🌙",
		nerd:    "",
		plain:   "z",
		kaomoji: "(－.－)…zzz",
		squares: "◐",
	},
	Visualizer: {
		emoji:   "🎚️",
		nerd:    "",
		plain:   "~",
		kaomoji: "ヽ(⌐■_■)ノ♪",
		squares: "▥",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "",
		plain:   "@",
		kaomoji: "(っ˘ڡ˘ς)",
		squares: "◈",
	},
}

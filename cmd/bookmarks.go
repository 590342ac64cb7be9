package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/vibe-audio/vibe/bookmark"
	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(bookmarksCmd)
}

var bookmarksCmd = &cobra.Command{
	Use:     "bookmarks",
	Aliases: []string{"marks"},
	Short:   "Manage bookmarks outside the player",
}

func printBookmarks(cmd *cobra.Command, id catalog.BookID, marks []bookmark.Bookmark) {
	cmd.Println(style.Bold(string(id)))
	for i, m := range marks {
		cmd.Printf(
			"  %s %s %s\n",
			style.Fg(color.Yellow)(strconv.Itoa(i+1)),
			m.Note,
			style.Faint(fmt.Sprintf("chapter %d at %s", m.Chapter+1, util.FormatTime(m.Time))),
		)
	}
}

func init() {
	bookmarksCmd.AddCommand(bookmarksListCmd)
	bookmarksListCmd.Flags().BoolP("json", "j", false, "Print the bookmarks as JSON")
	bookmarksListCmd.SetOut(os.Stdout)
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list [book-id]",
	Short: "List bookmarks of one book or of every book",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := openPersist()
		handleErr(err)
		defer util.Ignore(svc.Close)

		all, err := svc.Bookmarks.All()
		handleErr(err)

		if len(args) == 1 {
			id := catalog.BookID(args[0])
			all = map[catalog.BookID][]bookmark.Bookmark{id: all[id]}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(all))
			return
		}

		ids := lo.Keys(all)
		sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

		printed := false
		for _, id := range ids {
			if len(all[id]) == 0 {
				continue
			}
			if printed {
				cmd.Println()
			}
			printBookmarks(cmd, id, all[id])
			printed = true
		}

		if !printed {
			cmd.Println(style.Faint("No bookmarks"))
		}
	},
}

func init() {
	bookmarksCmd.AddCommand(bookmarksAddCmd)

	bookmarksAddCmd.Flags().Float64P("time", "t", 0, "Position in seconds")
	bookmarksAddCmd.Flags().IntP("chapter", "C", 1, "Chapter number, starting at 1")
	bookmarksAddCmd.Flags().StringP("note", "n", "", "Bookmark note. Prompted for when missing")
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <book-id>",
	Short: "Add a bookmark to a book",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			at      = lo.Must(cmd.Flags().GetFloat64("time"))
			chapter = lo.Must(cmd.Flags().GetInt("chapter"))
			note    = lo.Must(cmd.Flags().GetString("note"))
		)

		if chapter < 1 {
			handleErr(fmt.Errorf("chapter numbers start at 1"))
		}

		if note == "" {
			input := survey.Input{
				Message: "Note:",
				Help:    "A short reminder of what happens at this point",
			}
			handleErr(survey.AskOne(&input, &note, survey.WithValidator(survey.Required)))
		}

		svc, err := openPersist()
		handleErr(err)
		defer util.Ignore(svc.Close)

		added, err := svc.Bookmarks.Add(catalog.BookID(args[0]), at, note, chapter-1)
		handleErr(err)
		if !added {
			handleErr(fmt.Errorf("a bookmark needs a note"))
		}

		success("bookmarked %s at %s", style.Fg(color.Purple)(args[0]), util.FormatTime(at))
	},
}

func init() {
	bookmarksCmd.AddCommand(bookmarksRemoveCmd)
	bookmarksRemoveCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var bookmarksRemoveCmd = &cobra.Command{
	Use:     "rm <book-id> <number>",
	Aliases: []string{"remove"},
	Short:   "Remove a bookmark by its number in the list",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := catalog.BookID(args[0])
		number, err := strconv.Atoi(args[1])
		handleErr(err)

		svc, err := openPersist()
		handleErr(err)
		defer util.Ignore(svc.Close)

		marks, err := svc.Bookmarks.List(id)
		handleErr(err)
		if number < 1 || number > len(marks) {
			handleErr(fmt.Errorf("%s has %s", id, util.Quantify(len(marks), "bookmark", "bookmarks")))
		}

		seen := marks[number-1]

		if !lo.Must(cmd.Flags().GetBool("yes")) {
			confirm := survey.Confirm{
				Message: fmt.Sprintf("Remove %q?", seen.Note),
				Default: false,
			}
			var response bool
			handleErr(survey.AskOne(&confirm, &response))
			if !response {
				return
			}
		}

		handleErr(svc.Bookmarks.Delete(id, number-1, &seen))
		success("removed %q", seen.Note)
	},
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the recently played books",
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyListCmd.Flags().BoolP("json", "j", false, "Print the entries as JSON")
	historyListCmd.SetOut(os.Stdout)
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the recently played books, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := openPersist()
		handleErr(err)
		defer util.Ignore(svc.Close)

		entries, err := svc.History.Entries()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("Nothing played yet"))
			return
		}

		for _, e := range entries {
			chapter := fmt.Sprintf("chapter %d", e.LastChapter+1)
			if e.LastChapter < len(e.Chapters) {
				chapter = e.Chapters[e.LastChapter].Name
			}

			cmd.Printf(
				"%s %s %s\n",
				style.Fg(color.Yellow)(string(e.ID)),
				e.Title,
				style.Faint(fmt.Sprintf("%s at %s", chapter, util.FormatTime(e.LastTime))),
			)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every history entry and the resume position",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := openPersist()
		handleErr(err)
		defer util.Ignore(svc.Close)

		handleErr(svc.History.Clear())
		handleErr(svc.ClearPointer())
		success("history cleared")
	},
}

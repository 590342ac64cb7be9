package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/icon"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and build book catalogs",
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)

	catalogListCmd.Flags().StringP("category", "k", "", "Only list books of this category")
	catalogListCmd.Flags().StringP("search", "s", "", "Only list books matching this term")
	catalogListCmd.Flags().BoolP("json", "j", false, "Print the books as JSON")
	catalogListCmd.MarkFlagsMutuallyExclusive("category", "search")
	catalogListCmd.SetOut(os.Stdout)
}

// catalogListCmd prints the books of the configured catalog.
var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the books in the configured catalog",
	Run: func(cmd *cobra.Command, args []string) {
		erase := util.PrintErasable(fmt.Sprintf("%s Fetching the library...", icon.Get(icon.Progress)))
		library, err := fetchLibrary(context.Background())
		erase()
		handleErr(err)

		var books []*catalog.Book
		if term := lo.Must(cmd.Flags().GetString("search")); term != "" {
			books = library.Search(term)
		} else {
			books = library.ByCategory(lo.Must(cmd.Flags().GetString("category")))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(books))
			return
		}

		for _, book := range books {
			cmd.Printf(
				"%s %s %s\n",
				style.Fg(color.Yellow)(string(book.ID)),
				book.String(),
				style.Faint(fmt.Sprintf("(%s)", util.Quantify(len(book.Chapters), "chapter", "chapters"))),
			)
		}
	},
}

func init() {
	catalogCmd.AddCommand(catalogBuildCmd)

	catalogBuildCmd.Flags().StringP("output", "o", "books.json", "Where to write the merged catalog")
}

// catalogBuildCmd merges a directory of book files into one catalog.
var catalogBuildCmd = &cobra.Command{
	Use:   "build <dir>",
	Short: "Merge a directory of book JSON files into one catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, report, err := catalog.Build(args[0])
		handleErr(err)

		skipped := lo.Keys(report.Skipped)
		sort.Strings(skipped)
		for _, name := range skipped {
			fmt.Printf("%s skipped %s: %s\n", icon.Get(icon.Fail), name, style.Faint(report.Skipped[name]))
		}

		duplicates := lo.Keys(report.Duplicates)
		sort.Strings(duplicates)
		for _, name := range duplicates {
			fmt.Printf("%s skipped %s: duplicate id %s\n", icon.Get(icon.Fail), name, report.Duplicates[name])
		}

		output := lo.Must(cmd.Flags().GetString("output"))
		handleErr(filesystem.API().WriteFile(output, data, 0o644))

		success("wrote %s with %s", output, util.Quantify(len(report.Merged), "book", "books"))
	},
}

func init() {
	catalogCmd.AddCommand(catalogSchemaCmd)
	catalogSchemaCmd.SetOut(os.Stdout)
}

// catalogSchemaCmd prints the JSON schema of a catalog document.
var catalogSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the catalog format",
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(catalog.Schema()))
	},
}

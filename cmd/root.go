// Package cmd implements the command-line interface for vibe.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/icon"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/tui"
	"github.com/vibe-audio/vibe/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("backend", "b", "", "Media backend to play through (native or mpv)")
	lo.Must0(viper.BindPFlag(key.PlayerBackend, rootCmd.PersistentFlags().Lookup("backend")))

	rootCmd.Flags().BoolP("continue", "c", false, "Reopen the last played chapter at its saved position")
	rootCmd.Flags().Bool("no-visualizer", false, "Play without requesting analysis access")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

// rootCmd opens the library browser and player.
var rootCmd = &cobra.Command{
	Use:   constant.Vibe,
	Short: "A terminal audiobook player with resume, bookmarks and a live spectrum",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A terminal audiobook player with resume, bookmarks and a live spectrum"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if lo.Must(cmd.Flags().GetBool("no-visualizer")) {
			viper.Set(key.PlayerVisualize, false)
		}

		s, err := newSession(true)
		handleErr(err)
		defer s.close()

		options := tui.Options{
			Continue:   lo.Must(cmd.Flags().GetBool("continue")),
			Loop:       s.loop,
			Engine:     s.engine,
			Persist:    s.persist,
			Visualizer: s.visualizer,
			Library:    fetchLibrary,
		}
		handleErr(tui.Run(&options))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

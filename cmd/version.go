package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information and check for a newer release",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify()

		rows := [][2]string{
			{"Version", constant.Version},
			{"Git Commit", constant.Revision},
			{"Build Date", strings.TrimSpace(constant.BuiltAt)},
			{"Built By", constant.BuiltBy},
			{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
			{"Player", viper.GetString(key.PlayerBackend)},
			{"Storage", viper.GetString(key.StorageBackend)},
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n\n", style.Fg(color.Purple)("▇▇▇"), style.Fg(color.Purple)(constant.Vibe))
		for _, row := range rows {
			fmt.Fprintf(out, "  %s %s\n", style.Faint(fmt.Sprintf("%-12s", row[0])), style.Bold(row[1]))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "print only the version number")
}

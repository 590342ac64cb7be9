package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/icon"
	"github.com/vibe-audio/vibe/internal/script"
	"github.com/vibe-audio/vibe/network"
	"github.com/vibe-audio/vibe/resolver"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/vibe-audio/vibe/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolP("builtin", "B", false, "Apply only the builtin rules, skipping user resolvers")
	resolveCmd.SetOut(os.Stdout)
}

// resolveCmd prints the URL a chapter link would be played from.
var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Show the playable URL a chapter link resolves to",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw := args[0]

		if lo.Must(cmd.Flags().GetBool("builtin")) {
			cmd.Println(resolver.Resolve(raw))
			return
		}

		chain, err := resolver.LoadDir(where.Resolvers())
		handleErr(err)
		defer chain.Close()

		cmd.Println(chain.Resolve(raw))
	},
}

func init() {
	rootCmd.AddCommand(resolversCmd)
}

// resolversCmd groups the commands that manage user Lua resolvers.
var resolversCmd = &cobra.Command{
	Use:   "resolvers",
	Short: "Manage user Lua resolvers",
}

func init() {
	resolversCmd.AddCommand(resolversListCmd)
	resolversListCmd.SetOut(os.Stdout)
}

var resolversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the installed resolvers in the order they are tried",
	Run: func(cmd *cobra.Command, args []string) {
		chain, err := resolver.LoadDir(where.Resolvers())
		handleErr(err)
		defer chain.Close()

		if len(chain.Scripts) == 0 {
			cmd.Println(style.Faint("No resolvers installed in " + where.Resolvers()))
			return
		}

		for _, s := range chain.Scripts {
			cmd.Println(s.Name)
		}
	},
}

func init() {
	resolversCmd.AddCommand(resolversNewCmd)

	resolversNewCmd.Flags().StringP("name", "n", "", "Name of the new resolver")
	lo.Must0(resolversNewCmd.MarkFlagRequired("name"))
}

// resolversNewCmd scaffolds a resolver script.
var resolversNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Scaffold a new Lua resolver from a template",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		author := "Anonymous"
		if usr, err := user.Current(); err == nil {
			author = usr.Username
		}

		s := struct {
			Name   string
			Author string
			Fn     string
		}{
			Name:   lo.Must(cmd.Flags().GetString("name")),
			Author: author,
			Fn:     constant.ResolveFn,
		}

		tmpl, err := template.New("resolver").Parse(constant.ResolverTemplate)
		handleErr(err)

		target := filepath.Join(where.Resolvers(), util.SanitizeFilename(s.Name)+".lua")
		if exists, _ := filesystem.API().Exists(target); exists {
			handleErr(fmt.Errorf("%s already exists", target))
		}

		f, err := filesystem.API().Create(target)
		handleErr(err)
		defer util.Ignore(f.Close)

		handleErr(tmpl.Execute(f, s))
		cmd.Println(target)
	},
}

func init() {
	resolversCmd.AddCommand(resolversInstallCmd)
}

// resolversInstallCmd downloads a resolver script into the resolvers directory.
var resolversInstallCmd = &cobra.Command{
	Use:   "install <url>",
	Short: "Download a resolver script, replacing an older copy",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		u, err := url.Parse(args[0])
		handleErr(err)

		name := path.Base(u.Path)
		if !strings.HasSuffix(name, ".lua") {
			handleErr(fmt.Errorf("%s does not point to a .lua file", args[0]))
		}

		target := filepath.Join(where.Resolvers(), util.SanitizeFilename(strings.TrimSuffix(name, ".lua"))+".lua")

		erase := util.PrintErasable(fmt.Sprintf("%s Downloading %s...", icon.Get(icon.Progress), name))
		written, err := script.Install(context.Background(), network.Client, args[0], target)
		erase()
		handleErr(err)

		if !written {
			fmt.Printf("%s %s is up to date\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
			return
		}

		s, err := resolver.LoadScript(target)
		if err != nil {
			_ = filesystem.API().Remove(target)
			handleErr(fmt.Errorf("installed script is not a resolver: %w", err))
		}
		s.Close()

		success("installed %s", style.Fg(color.Yellow)(target))
	},
}

func init() {
	resolversCmd.AddCommand(resolversRemoveCmd)
}

func completionResolvers(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	files, err := filesystem.API().ReadDir(where.Resolvers())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return lo.FilterMap(files, func(item os.FileInfo, _ int) (string, bool) {
		if !strings.HasSuffix(item.Name(), ".lua") {
			return "", false
		}
		return util.FileStem(item.Name()), true
	}), cobra.ShellCompDirectiveNoFileComp
}

var resolversRemoveCmd = &cobra.Command{
	Use:               "remove <name>...",
	Aliases:           []string{"rm"},
	Short:             "Uninstall resolvers",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completionResolvers,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			target := filepath.Join(where.Resolvers(), name+".lua")
			handleErr(filesystem.API().Remove(target))
			script.Forget(target)
			success("removed %s", style.Fg(color.Yellow)(name))
		}
	},
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/config"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func completionConfigKeys(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

// lookupField fails the command with a colored suggestion for unknown keys.
func lookupField(name string) config.Field {
	field, err := config.Lookup(name)

	var unknown *config.UnknownKeyError
	if errors.As(err, &unknown) {
		handleErr(fmt.Errorf(
			"unknown key %s, did you mean %s?",
			style.Fg(color.Red)(unknown.Key),
			style.Fg(color.Yellow)(unknown.Closest),
		))
	}

	return field
}

// keyFrom takes the key from the first argument, falling back to --key.
func keyFrom(cmd *cobra.Command, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if k := lo.Must(cmd.Flags().GetString("key")); k != "" {
		return k
	}

	handleErr(errors.New("key is required as an argument or with --key"))
	return ""
}

func saveConfig() {
	handleErr(config.Save())
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change settings",
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe settings with their current and default values",
	Run: func(cmd *cobra.Command, args []string) {
		keys := lo.Must(cmd.Flags().GetStringSlice("key"))

		fields := lo.Values(config.Default)
		if len(keys) > 0 {
			fields = lo.Map(keys, func(k string, _ int) config.Field { return lookupField(k) })
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

		if lo.Must(cmd.Flags().GetBool("json")) {
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i := range fields {
			if i > 0 {
				fmt.Print("\n\n")
			}
			fmt.Print(fields[i].Pretty())
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value...]",
	Short:             "Change a setting and write it to the config file",
	Example:           "  vibe config set player.backend mpv\n  vibe config set player.rates 1 1.5 2",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		name := keyFrom(cmd, args)
		field := lookupField(name)

		raw := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			raw = args[1:]
		}

		value, err := field.Parse(raw)
		handleErr(err)
		handleErr(config.Set(name, value))
		saveConfig()

		success("set %s to %s", style.Fg(color.Purple)(name), style.Fg(color.Yellow)(fmt.Sprint(value)))
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the current value of a setting",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		name := keyFrom(cmd, args)
		lookupField(name)
		fmt.Println(viper.Get(name))
	},
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write every setting to a fresh config file",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("force")) {
			if exists, _ := filesystem.API().Exists(config.Path()); exists {
				handleErr(config.Remove())
			}
		}

		handleErr(viper.SafeWriteConfig())
		success("wrote config to %s", config.Path())
	},
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"remove"},
	Short:   "Delete the config file, falling back to defaults",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(config.Remove())
		success("deleted config")
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore one setting, or all of them, to the default",
	PreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("key") && !cmd.Flags().Changed("all") {
			handleErr(errors.New("either --key or --all must be set"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for name, field := range config.Default {
				viper.Set(name, field.Value)
			}
			saveConfig()
			success("reset all config values")
			return
		}

		name := lo.Must(cmd.Flags().GetString("key"))
		field := lookupField(name)
		viper.Set(name, field.Value)
		saveConfig()

		success("reset %s to %s", style.Fg(color.Purple)(name), style.Fg(color.Yellow)(fmt.Sprint(field.Value)))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInfoCmd, configSetCmd, configGetCmd, configWriteCmd, configDeleteCmd, configResetCmd)

	configInfoCmd.Flags().StringSliceP("key", "k", nil, "only describe these keys")
	configInfoCmd.Flags().BoolP("json", "j", false, "print as JSON")
	configInfoCmd.SetOut(os.Stdout)

	configSetCmd.Flags().StringP("key", "k", "", "key to change")
	configSetCmd.Flags().StringSliceP("value", "v", nil, "new value")

	configGetCmd.Flags().StringP("key", "k", "", "key to print")

	configWriteCmd.Flags().BoolP("force", "f", false, "replace an existing config file")

	configResetCmd.Flags().StringP("key", "k", "", "key to restore")
	configResetCmd.Flags().BoolP("all", "a", false, "restore every key")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")

	for _, c := range []*cobra.Command{configInfoCmd, configSetCmd, configGetCmd, configResetCmd} {
		lo.Must0(c.RegisterFlagCompletionFunc("key", completionConfigKeys))
	}
}

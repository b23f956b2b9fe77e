package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/filesystem"
	"github.com/syncwatch/syncwatch/key"
	"github.com/syncwatch/syncwatch/style"
	"github.com/syncwatch/syncwatch/where"
	"golang.org/x/term"
)

func errUnknownKey(key string) error {
	closest := lo.MinBy(lo.Keys(config.Default), func(a string, b string) bool {
		return levenshtein.Distance(key, a) < levenshtein.Distance(key, b)
	})
	msg := fmt.Sprintf(
		"unknown key %s, did you mean %s?",
		style.Fg(style.Red)(key),
		style.Fg(style.Yellow)(closest),
	)

	return errors.New(msg)
}

func completionConfigKeys(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	keys := lo.Keys(config.Default)
	if toComplete != "" {
		keys = fuzzy.FindFold(toComplete, keys)
	}
	sort.Strings(keys)
	return keys, cobra.ShellCompDirectiveNoFileComp
}

// writeConfig persists viper's state, creating the file on first use.
func writeConfig() error {
	err := viper.WriteConfig()

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return viper.SafeWriteConfig()
	}

	return err
}

// terminalWidth falls back to 80 columns when stdout is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// configCmd groups the commands that inspect and edit syncwatch.toml.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the configuration",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Only describe these keys")
	configInfoCmd.Flags().BoolP("json", "j", false, "Print as JSON")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configInfoCmd.SetOut(os.Stdout)
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration keys with their current values",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys   = lo.Must(cmd.Flags().GetStringSlice("key"))
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			fields = lo.Values(config.Default)
		)

		if len(keys) > 0 {
			fields = make([]config.Field, 0, len(keys))

			for _, key := range keys {
				if _, ok := config.Default[key]; !ok {
					handleErr(errUnknownKey(key))
				}

				fields = append(fields, config.Default[key])
			}
		}

		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			lo.Must0(encoder.Encode(lo.ToSlicePtr(fields)))
			return
		}

		width := terminalWidth()
		for i, field := range fields {
			field.Description = wrap.String(field.Description, width)
			cmd.Print(field.Pretty())

			if i < len(fields)-1 {
				cmd.Println()
				cmd.Println()
			}
		}
		cmd.Println()
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value>",
	Short:             "Set a configuration key and save it",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		k, raw := args[0], args[1]

		field, ok := config.Default[k]
		if !ok {
			handleErr(errUnknownKey(k))
		}

		var v any
		switch field.Value.(type) {
		case string:
			v = raw
		case bool:
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				handleErr(fmt.Errorf("invalid boolean value: %s", raw))
			}
			v = parsed
		}

		viper.Set(k, v)
		handleErr(writeConfig())

		fmt.Println(style.Success(fmt.Sprintf(
			"set %s to %s",
			style.Fg(style.Purple)(k),
			style.Fg(style.Yellow)(fmt.Sprint(v)),
		)))
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print the current value of a configuration key",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		if _, ok := config.Default[args[0]]; !ok {
			handleErr(errUnknownKey(args[0]))
		}

		fmt.Println(viper.Get(args[0]))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to a new config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := where.ConfigFile()

		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(filesystem.API().Remove(path))
		}

		handleErr(viper.SafeWriteConfig())
		fmt.Println(style.Success("wrote config to " + path))
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the config file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(where.ConfigFile()))
		fmt.Println(style.Success("deleted config"))
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringP("key", "k", "", "Key to restore to its default")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every optional key to its default")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	configResetCmd.MarkFlagsOneRequired("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore configuration keys to their defaults",
	Long:  "Restore configuration keys to their defaults.\nRequired keys have no default and are left untouched.",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			k   = lo.Must(cmd.Flags().GetString("key"))
			all = lo.Must(cmd.Flags().GetBool("all"))
		)

		if all {
			for name, field := range config.Default {
				if !field.Required {
					viper.Set(name, field.Value)
				}
			}
		} else if field, ok := config.Default[k]; !ok {
			handleErr(errUnknownKey(k))
		} else if field.Required {
			handleErr(fmt.Errorf("%s is required and has no default", k))
		} else {
			viper.Set(k, field.Value)
		}

		handleErr(writeConfig())

		if all {
			fmt.Println(style.Success("reset all optional config values"))
		} else {
			fmt.Println(style.Success(fmt.Sprintf(
				"reset %s to default value %s",
				style.Fg(style.Purple)(k),
				style.Fg(style.Yellow)(fmt.Sprint(config.Default[k].Value)),
			)))
		}
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

// configInitCmd asks for every required key and saves the answers.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively fill in the required configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			handleErr(errors.New("config init needs an interactive terminal, use config set instead"))
		}

		answers := struct {
			ServerURL     string
			Name          string
			RoomName      string
			EnableOnStart bool
		}{}

		questions := []*survey.Question{
			{
				Name:     "ServerURL",
				Prompt:   &survey.Input{Message: "Relay server URL", Default: viper.GetString(key.ServerURL), Help: config.Default[key.ServerURL].Description},
				Validate: survey.Required,
			},
			{
				Name:     "Name",
				Prompt:   &survey.Input{Message: "Your display name", Default: viper.GetString(key.Name)},
				Validate: survey.Required,
			},
			{
				Name:     "RoomName",
				Prompt:   &survey.Input{Message: "Room to join", Default: viper.GetString(key.RoomName)},
				Validate: survey.Required,
			},
			{
				Name:   "EnableOnStart",
				Prompt: &survey.Confirm{Message: "Start synchronizing as soon as mpv opens?", Default: viper.GetBool(key.EnableOnStart)},
			},
		}
		handleErr(survey.Ask(questions, &answers))

		viper.Set(key.ServerURL, answers.ServerURL)
		viper.Set(key.Name, answers.Name)
		viper.Set(key.RoomName, answers.RoomName)
		viper.Set(key.EnableOnStart, answers.EnableOnStart)

		_, err := config.Load()
		handleErr(err)
		handleErr(writeConfig())

		fmt.Println(style.Success("wrote config to " + where.ConfigFile()))
	},
}

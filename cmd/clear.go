package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/syncwatch/syncwatch/filesystem"
	"github.com/syncwatch/syncwatch/style"
	"github.com/syncwatch/syncwatch/where"
)

// clearTarget is a directory syncwatch fills and never empties on its own.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"logs directory", "logs", mo.Some("l"), where.Logs},
	{"stale mpv sockets", "temp", mo.Some("t"), where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove log files and leftover IPC sockets",
	Long:  "Remove log files and leftover IPC sockets.\nDo not clear temp while a syncwatch session is running: its mpv socket lives there.",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			handleErr(filesystem.API().RemoveAll(target.location()))
			fmt.Println(style.Success(fmt.Sprintf("%s cleared", target.name)))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}

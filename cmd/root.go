// Package cmd implements the command-line interface for syncwatch.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/key"
	"github.com/syncwatch/syncwatch/log"
	"github.com/syncwatch/syncwatch/player"
	"github.com/syncwatch/syncwatch/relay"
	"github.com/syncwatch/syncwatch/room"
	"github.com/syncwatch/syncwatch/session"
	"github.com/syncwatch/syncwatch/style"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.Flags().StringP("socket", "s", "", "Attach to a running mpv through its IPC socket instead of launching one")
	lo.Must0(viper.BindPFlag(key.MPVSocket, rootCmd.Flags().Lookup("socket")))

	rootCmd.Flags().StringP("room", "r", "", "Room to join")
	lo.Must0(viper.BindPFlag(key.RoomName, rootCmd.Flags().Lookup("room")))

	rootCmd.Flags().StringP("name", "n", "", "Display name announced to the room")
	lo.Must0(viper.BindPFlag(key.Name, rootCmd.Flags().Lookup("name")))

	rootCmd.Flags().String("server", "", "Relay server URL")
	lo.Must0(viper.BindPFlag(key.ServerURL, rootCmd.Flags().Lookup("server")))

	rootCmd.Flags().BoolP("enable", "e", false, "Start synchronizing immediately")
	lo.Must0(viper.BindPFlag(key.EnableOnStart, rootCmd.Flags().Lookup("enable")))
}

// rootCmd attaches to mpv and keeps its pause state in step with the room.
var rootCmd = &cobra.Command{
	Use:   constant.Syncwatch + " [media]",
	Short: "Watch together: keep mpv's pause state in sync across a room",
	Long: style.New().Bold(true).Foreground(style.HiPurple).Render(constant.Syncwatch) + "\n" +
		style.New().Italic(true).Foreground(style.HiRed).Render("    - Watch together: keep mpv's pause state in sync across a room") + "\n\n" +
		"Without --socket syncwatch launches mpv itself, optionally opening [media].\n" +
		"Press " + style.Fg(style.Yellow)("u") + " in mpv to toggle synchronization.",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		s, err := config.Load()
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handleErr(run(ctx, s, lo.FirstOr(args, "")))
	},
}

func run(ctx context.Context, s config.Settings, media string) error {
	socket := s.Socket

	if socket == "" {
		CheckDependencies(s.Executable)

		path, err := player.NewSocketPath()
		if err != nil {
			return err
		}

		proc, err := player.Launch(s.Executable, media, path)
		if err != nil {
			return err
		}
		defer func() {
			if err := proc.Close(); err != nil {
				log.Warnf("close mpv: %v", err)
			}
		}()

		socket = proc.Socket()
	} else if media != "" {
		log.Warnf("ignoring %s: attaching to the mpv at %s", media, socket)
	}

	ipc, err := player.Dial(socket)
	if err != nil {
		return err
	}
	defer func() {
		_ = ipc.Close()
	}()

	err = session.Start(ctx, ipc, s, dialRelay)

	// A player syncwatch launched does not outlive the session.
	if s.Socket == "" {
		if err := ipc.Quit(); err != nil && !errors.Is(err, player.ErrClosed) {
			log.Debugf("quit mpv: %v", err)
		}
	}

	return err
}

// dialRelay joins the configured room over a relay connection.
func dialRelay(ctx context.Context, s config.Settings, onEvent func(room.Event)) (session.Transport, error) {
	conn, err := relay.ConnectAndJoin(ctx, s.ServerURL, s.Name, s.RoomName, onEvent)
	if err != nil {
		return nil, err
	}
	return conn, nil
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
		_, _ = fmt.Fprintln(os.Stderr, style.Failure(strings.Trim(err.Error(), " \n")))
		os.Exit(1)
	}
}

package cmd

import (
	"encoding/json"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/syncwatch/syncwatch/room"
)

func init() {
	rootCmd.AddCommand(protocolCmd)
	protocolCmd.AddCommand(protocolSchemaCmd)
	protocolSchemaCmd.SetOut(os.Stdout)
}

var protocolCmd = &cobra.Command{
	Use:   "protocol",
	Short: "Inspect the relay protocol",
}

// protocolSchemaCmd prints the JSON Schema of the payloads exchanged with the relay.
var protocolSchemaCmd = &cobra.Command{
	Use:       "schema [event]",
	Short:     "Print the JSON Schema of relay event payloads",
	Example:   "  syncwatch protocol schema message",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: lo.Keys(room.Schemas()),
	Run: func(cmd *cobra.Command, args []string) {
		schemas := room.Schemas()

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		if len(args) == 1 {
			handleErr(encoder.Encode(schemas[args[0]]))
			return
		}
		handleErr(encoder.Encode(schemas))
	},
}

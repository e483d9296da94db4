package cmd

import (
	"fmt"
	"sort"

	"ironbank/handler/views"
	"ironbank/store/event"

	"github.com/facebookgo/clock"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

var marketsCmd = &cobra.Command{
	Use:     "markets",
	Aliases: []string{"ms"},
	Short:   "print markets listed by the config",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		bank := provideBank(ctx, event.Log(), clock.New())

		markets, err := views.Markets(ctx, bank.Pool, bank.Oracle)
		if err != nil {
			cmd.PrintErrln("load markets", err)
			return
		}

		sort.Slice(markets, func(i, j int) bool {
			return markets[i].Asset < markets[j].Asset
		})

		for _, m := range markets {
			cmd.Println(m.Asset)
			printFields(cmd, structs.Map(m))
		}
	},
}

func printFields(cmd *cobra.Command, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		cmd.Println(fmt.Sprintf("  %-22s %v", k, fields[k]))
	}
}

func init() {
	rootCmd.AddCommand(marketsCmd)
}

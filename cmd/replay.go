package cmd

import (
	"sort"

	"ironbank/handler/views"
	"ironbank/service/scenario"
	"ironbank/store/event"

	"github.com/facebookgo/clock"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "replay a scenario against a fresh pool built from the config",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		s, err := scenario.Load(args[0])
		if err != nil {
			cmd.PrintErrln("load scenario", err)
			return
		}

		clk := clock.NewMock()
		bank := provideBank(ctx, event.Log(), clk)

		results, err := scenario.New(bank, clk).Run(ctx, s)
		for _, r := range results {
			if r.Err != nil {
				cmd.Printf("#%d %s failed: %v\n", r.Index, r.Op, r.Err)
				continue
			}

			cmd.Printf("#%d %s ok\n", r.Index, r.Op)
			for k, v := range r.Output {
				cmd.Printf("  %s: %s\n", k, v)
			}
		}

		if err != nil {
			cmd.PrintErrln("replay aborted", err)
			return
		}

		if accounts, _ := cmd.Flags().GetBool("accounts"); !accounts {
			return
		}

		users := bank.Pool.Accounts()
		sort.Strings(users)
		for _, user := range users {
			account, err := views.AccountOf(ctx, bank.Pool, user)
			if err != nil {
				cmd.PrintErrln("account", user, err)
				continue
			}

			cmd.Println(user)
			printFields(cmd, structs.Map(account))
		}
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("accounts", true, "print accounts after the replay")
}

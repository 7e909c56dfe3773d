package cli

import (
	"fmt"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/spf13/cobra"
)

var marketCategory string

func init() {
	marketCmd.PersistentFlags().StringVar(&marketCategory, "category", "", "filter by category")
	marketCmd.AddCommand(marketShowCmd, marketSaveCmd)
	rootCmd.AddCommand(marketCmd)
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "List marketplace items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		market := a.marketplace()
		defer market.Close()
		if marketCategory != "" {
			market.SetFilter(domain.MarketplaceFilter{Category: marketCategory})
		}
		if err := market.Load(cmd.Context(), true); err != nil {
			return err
		}

		for _, it := range market.Items() {
			saved := " "
			if it.Saved {
				saved = "*"
			}
			fmt.Printf("%s [%s] $%-8.2f %-30s %d saves\n",
				saved, it.ID, it.Price, firstLine(it.Title), it.SavesCount)
		}
		return nil
	},
}

var marketShowCmd = &cobra.Command{
	Use:   "show [item-id]",
	Short: "Show a single listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		market := a.marketplace()
		defer market.Close()
		it, err := market.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s  $%.2f\n%d saves\n", it.ID, it.Title, it.Price, it.SavesCount)
		return nil
	},
}

var marketSaveCmd = &cobra.Command{
	Use:   "save [item-id]",
	Short: "Toggle a save on a listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		market := a.marketplace()
		defer market.Close()
		if err := market.Load(cmd.Context(), true); err != nil {
			return err
		}
		if err := market.ToggleSave(cmd.Context(), args[0]); err != nil {
			return err
		}

		for _, it := range market.Items() {
			if it.ID == args[0] {
				fmt.Printf("%s: saved=%v saves=%d\n", it.ID, it.Saved, it.SavesCount)
			}
		}
		return nil
	},
}

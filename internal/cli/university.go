package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(universityCmd)
}

var universityCmd = &cobra.Command{
	Use:   "university [name]",
	Short: "Search universities by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		results, err := a.university.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		for _, u := range results {
			domain := ""
			if len(u.Domains) > 0 {
				domain = u.Domains[0]
			}
			fmt.Printf("%-50s %-20s %s\n", u.Name, u.Country, domain)
		}
		return nil
	},
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	eventsCmd.PersistentFlags().StringVar(&eventCategory, "category", "", "filter by category")
	eventsCmd.AddCommand(eventsShowCmd, eventsRegisterCmd)
	rootCmd.AddCommand(eventsCmd)
}

var eventCategory string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List campus events",
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

		events := a.events()
		defer events.Close()
		if eventCategory != "" {
			events.SetFilter(eventFilter(eventCategory))
		}
		if err := events.Load(cmd.Context(), true); err != nil {
			return err
		}

		for _, e := range events.All() {
			reg := " "
			if e.IsRegistered {
				reg = "*"
			}
			fmt.Printf("%s [%s] %s  %s  %d attending\n",
				reg, e.ID, e.StartsAt.Format("Jan 02 15:04"), e.Title, e.AttendeesCount)
		}
		return nil
	},
}

var eventsShowCmd = &cobra.Command{
	Use:   "show [event-id]",
	Short: "Show a single event",
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

		events := a.events()
		defer events.Close()
		e, err := events.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n%s, %s\n%d attending\n",
			e.ID, e.Title, e.Location, e.StartsAt.Format("Jan 02 15:04"), e.AttendeesCount)
		return nil
	},
}

var eventsRegisterCmd = &cobra.Command{
	Use:   "register [event-id]",
	Short: "Toggle registration for an event",
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

		events := a.events()
		defer events.Close()
		for {
			if err := events.Load(cmd.Context(), false); err != nil {
				return err
			}
			if !events.HasMore() {
				break
			}
			if found := func() bool {
				for _, e := range events.All() {
					if e.ID == args[0] {
						return true
					}
				}
				return false
			}(); found {
				break
			}
		}

		if err := events.ToggleRegistration(cmd.Context(), args[0]); err != nil {
			return err
		}
		for _, e := range events.All() {
			if e.ID == args[0] {
				fmt.Printf("%s: registered=%v attendees=%d\n", e.ID, e.IsRegistered, e.AttendeesCount)
			}
		}
		return nil
	},
}

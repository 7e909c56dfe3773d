package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	chatCmd.AddCommand(chatSendCmd, chatReadCmd, chatShowCmd)
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "List conversations",
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

		messaging := a.messaging()
		defer messaging.Close()
		if err := messaging.LoadConversations(cmd.Context(), true); err != nil {
			return err
		}

		for _, c := range messaging.Conversations() {
			preview := ""
			if c.LastMessage != nil {
				preview = firstLine(c.LastMessage.Content)
			}
			fmt.Printf("[%s] %-14s unread=%-3d %s\n",
				c.ID, c.Peer(a.session.UserID()), c.UnreadCount, preview)
		}
		return nil
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Show a conversation's messages",
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

		messaging := a.messaging()
		defer messaging.Close()
		if err := messaging.LoadMessages(cmd.Context(), args[0], true); err != nil {
			return err
		}

		for _, msg := range messaging.Messages(args[0]) {
			status := string(msg.Status)
			if msg.Failed {
				status = "failed"
			}
			fmt.Printf("%s %-10s [%s] %s\n",
				msg.SentAt.Format("15:04"), msg.SenderID, status, msg.Content)
		}
		return nil
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send [conversation-id] [receiver-id] [message]",
	Short: "Send a direct message",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		messaging := a.messaging()
		defer messaging.Close()
		if err := messaging.LoadConversations(cmd.Context(), true); err != nil {
			return err
		}

		content := strings.Join(args[2:], " ")
		if _, err := messaging.Send(cmd.Context(), args[0], args[1], content); err != nil {
			return err
		}
		fmt.Println("sent")
		return nil
	},
}

var chatReadCmd = &cobra.Command{
	Use:   "read [conversation-id]",
	Short: "Mark a conversation as read",
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

		messaging := a.messaging()
		defer messaging.Close()
		if err := messaging.LoadConversations(cmd.Context(), true); err != nil {
			return err
		}
		if err := messaging.LoadMessages(cmd.Context(), args[0], true); err != nil {
			return err
		}
		messaging.MarkRead(cmd.Context(), args[0])
		fmt.Println("marked read")
		return nil
	},
}

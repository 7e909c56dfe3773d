package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaushikNagaraj77/oruma-go/internal/realtime"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream realtime activity until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		ctx := cmd.Context()
		if err := a.requireSession(ctx); err != nil {
			return err
		}

		if err := a.channel.Connect(ctx); err != nil {
			return err
		}

		feed := a.feed()
		defer feed.Close()
		messaging := a.messaging()
		defer messaging.Close()
		if err := feed.Load(ctx, true); err != nil {
			return err
		}
		if err := messaging.LoadConversations(ctx, true); err != nil {
			return err
		}

		subs := []realtime.Subscription{
			a.channel.On(realtime.EventNewPost, func(e realtime.Event) {
				ev := e.(realtime.NewPost)
				fmt.Printf("new post by %s: %s\n", ev.Post.AuthorName, firstLine(ev.Post.Content))
			}),
			a.channel.On(realtime.EventPostLiked, func(e realtime.Event) {
				ev := e.(realtime.PostLiked)
				fmt.Printf("post %s now has %d likes\n", ev.PostID, ev.LikesCount)
			}),
			a.channel.On(realtime.EventMessageDelivered, func(e realtime.Event) {
				ev := e.(realtime.MessageDelivered)
				fmt.Printf("message from %s: %s (unread total %d)\n",
					ev.Message.SenderID, firstLine(ev.Message.Content), messaging.UnreadTotal())
			}),
			a.channel.On(realtime.EventUserOnline, func(e realtime.Event) {
				ev := e.(realtime.Presence)
				fmt.Printf("%s is online\n", ev.UserID)
			}),
			a.channel.On(realtime.EventUserOffline, func(e realtime.Event) {
				ev := e.(realtime.Presence)
				fmt.Printf("%s went offline\n", ev.UserID)
			}),
		}
		defer func() {
			for _, sub := range subs {
				a.channel.Off(sub)
			}
		}()

		fmt.Printf("watching as %s, %d posts loaded, %d unread messages (ctrl-c to stop)\n",
			a.session.UserID(), len(feed.Posts()), messaging.UnreadTotal())

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		select {
		case <-stop:
		case <-ctx.Done():
		}
		return nil
	},
}

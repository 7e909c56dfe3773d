package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
)

func init() {
	feedCmd.AddCommand(feedShowCmd, feedLikeCmd, feedSaveCmd, feedPostCmd, feedEditCmd, feedSearchCmd)
	rootCmd.AddCommand(feedCmd)
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the feed",
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

		feed := a.feed()
		defer feed.Close()
		if err := feed.Load(cmd.Context(), true); err != nil {
			return err
		}

		for _, p := range feed.Posts() {
			liked := " "
			if p.Liked {
				liked = "*"
			}
			fmt.Printf("%s [%s] %-18s %3d likes %3d comments  %s\n",
				liked, p.ID, p.AuthorName, p.LikesCount, p.CommentsCount, firstLine(p.Content))
		}
		return nil
	},
}

var feedShowCmd = &cobra.Command{
	Use:   "show [post-id]",
	Short: "Show a single post",
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

		feed := a.feed()
		defer feed.Close()
		post, err := feed.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n%s\n%d likes, %d comments\n",
			post.ID, post.AuthorName, post.Content, post.LikesCount, post.CommentsCount)
		return nil
	},
}

var feedLikeCmd = &cobra.Command{
	Use:   "like [post-id]",
	Short: "Toggle a like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFeedPost(cmd, args[0], "like")
	},
}

var feedSaveCmd = &cobra.Command{
	Use:   "save [post-id]",
	Short: "Toggle a save on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFeedPost(cmd, args[0], "save")
	},
}

// withFeedPost loads the feed until the target post is present, then runs
// the toggle so the optimistic update has an entity to act on.
func withFeedPost(cmd *cobra.Command, postID, action string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	feed := a.feed()
	defer feed.Close()
	for {
		if err := feed.Load(cmd.Context(), false); err != nil {
			return err
		}
		if hasPost(feed.Posts(), postID) || !feed.HasMore() {
			break
		}
	}
	if !hasPost(feed.Posts(), postID) {
		return apperrors.NotFound("post "+postID, nil)
	}

	switch action {
	case "like":
		err = feed.ToggleLike(cmd.Context(), postID)
	case "save":
		err = feed.ToggleSave(cmd.Context(), postID)
	}
	if err != nil {
		return err
	}

	for _, p := range feed.Posts() {
		if p.ID == postID {
			fmt.Printf("%s: liked=%v likes=%d saved=%v\n", p.ID, p.Liked, p.LikesCount, p.Saved)
		}
	}
	return nil
}

var feedPostCmd = &cobra.Command{
	Use:   "post [content]",
	Short: "Create a post",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		feed := a.feed()
		defer feed.Close()
		post, err := feed.Create(cmd.Context(), postDraft(strings.Join(args, " ")))
		if err != nil {
			return err
		}
		fmt.Printf("posted %s\n", post.ID)
		return nil
	},
}

var feedEditCmd = &cobra.Command{
	Use:   "edit [post-id] [content]",
	Short: "Edit one of your posts",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		feed := a.feed()
		defer feed.Close()
		post, err := feed.Update(cmd.Context(), args[0], postDraft(strings.Join(args[1:], " ")))
		if err != nil {
			return err
		}
		fmt.Printf("updated %s\n", post.ID)
		return nil
	},
}

var feedSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search posts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		feed := a.feed()
		defer feed.Close()
		if err := feed.Search(cmd.Context(), strings.Join(args, " ")); err != nil {
			return err
		}
		for _, p := range feed.Posts() {
			fmt.Printf("[%s] %-18s %s\n", p.ID, p.AuthorName, firstLine(p.Content))
		}
		return nil
	},
}

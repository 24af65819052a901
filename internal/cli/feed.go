package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/UkralStul/minifeed/internal/view"
)

var feedCmd = &cobra.Command{
	Use:     "feed",
	Aliases: []string{"ls"},
	Short:   "Show the feed, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := session(ctx)
		if err != nil {
			return err
		}
		items, err := current.Feed.ListFeed(ctx, sess)
		if err != nil {
			return err
		}
		view.RenderFeed(cmd.OutOrStdout(), items, current.Clock.NowUtc())
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Publish a new post",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := session(ctx)
		if err != nil {
			return err
		}
		post, err := current.Feed.CreatePost(ctx, sess, strings.Join(args, " "))
		if err != nil {
			return err
		}
		view.Success(cmd.OutOrStdout(), "Posted %s", post.ID)
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <post id or #>",
	Short: "Like a post, or remove your like",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := requireSession(ctx)
		if err != nil {
			return err
		}
		postID, err := resolvePostID(ctx, sess, args[0])
		if err != nil {
			return err
		}
		liked, err := current.Feed.ToggleLike(ctx, sess, postID)
		if err != nil {
			return err
		}
		if liked {
			view.Success(cmd.OutOrStdout(), "Liked")
		} else {
			view.Success(cmd.OutOrStdout(), "Like removed")
		}
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <post id or #> <text>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := requireSession(ctx)
		if err != nil {
			return err
		}
		postID, err := resolvePostID(ctx, sess, args[0])
		if err != nil {
			return err
		}
		if _, err := current.Feed.AddComment(ctx, postID, sess.Username, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		view.Success(cmd.OutOrStdout(), "Comment added")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(feedCmd)
	RootCmd.AddCommand(postCmd)
	RootCmd.AddCommand(likeCmd)
	RootCmd.AddCommand(commentCmd)
}

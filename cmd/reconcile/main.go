// Command reconcile recounts the likes and comments of posts and fixes
// counters that drifted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/socialape/backend/internal/bootstrap"
	"github.com/anonto42/socialape/backend/internal/services"
	"github.com/anonto42/socialape/backend/pkg/config"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Log.WithError(err).Error("reconcile failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var postID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recount post likes and comments",
		Long: `Recount likeCount and commentCount from the likes and comments
collections and write back the posts whose counters drifted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), postID)
		},
	}

	cmd.Flags().StringVar(&postID, "post", "", "reconcile a single post instead of all of them")
	return cmd
}

func run(ctx context.Context, postID string) error {
	cfg := config.Load()
	log.InitLogger(cfg.Env, cfg.LogLevel)
	if err := checkConfig(cfg); err != nil {
		return err
	}

	infra, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	// Counter fixes go straight to the store: no trigger reacts to them.
	posts := services.NewPostService(infra.Store)

	if postID != "" {
		changed, err := posts.ReconcileCounters(ctx, postID)
		if err != nil {
			return err
		}
		log.Log.WithField("postId", postID).WithField("changed", changed).Info("reconciled post")
		return nil
	}

	fixed, err := posts.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	log.Log.WithField("fixed", fixed).Info("reconciled all posts")
	return nil
}

// checkConfig rejects configurations the command cannot do useful work with.
// The memory store starts empty in every process, so there is nothing to
// reconcile in it.
func checkConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if cfg.StoreDriver == config.StoreMemory {
		return errors.Errorf("STORE_DRIVER=%s holds no data outside the server process", config.StoreMemory)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"khrental/internal/domain"
	"khrental/internal/repository"
	"khrental/internal/service/auth"
	"khrental/internal/service/classifier"
	"khrental/internal/service/tracker"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show a maintenance request with its progress and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid request id %q", args[0])
			}

			cfg := loadConfig()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			view, err := loadView(cmd.Context(), repository.NewRepositories(db), id, time.Now())
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), view)
			}
			return printView(cmd.OutOrStdout(), view)
		},
	}
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			cfg := loadConfig()
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			if ttl > 0 {
				cfg.JWTAccessExpiry = ttl
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			repos := repository.NewRepositories(db)
			user, err := repos.User.GetByID(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if !user.IsActive {
				return fmt.Errorf("user %s is inactive", userID)
			}

			token, err := auth.NewService(repos.User, cfg).IssueAccessToken(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: $JWT_ACCESS_EXPIRY)")
	return cmd
}

type requestView struct {
	Request  *domain.MaintenanceRequest `json:"request"`
	Progress tracker.Progress          `json:"progress"`
	Gallery  []classifier.Group        `json:"gallery"`
}

func loadView(ctx context.Context, repos *repository.Repositories, id uuid.UUID, now time.Time) (*requestView, error) {
	req, err := repos.MaintenanceRequest.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Images, err = repos.RequestImage.ListByRequest(ctx, id); err != nil {
		return nil, err
	}
	if req.Comments, err = repos.Comment.ListByRequest(ctx, id); err != nil {
		return nil, err
	}

	return &requestView{
		Request:  req,
		Progress: tracker.Track(req, now),
		Gallery:  classifier.Organize(req.Images, now),
	}, nil
}

package main

import (
	"log/slog"

	"userpost-service/configs"
	"userpost-service/internal/metrics"
	"userpost-service/internal/migrate"
	"userpost-service/internal/post"
	"userpost-service/internal/shared/db"
	"userpost-service/internal/user"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
)

func newSeedCmd(cfg *configs.Config) *cobra.Command {
	var (
		users, postsPerUser int
		seed                int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fake users and posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := db.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := migrate.AutoMigrateAll(store); err != nil {
				return err
			}

			faker := gofakeit.New(seed)
			m := metrics.New()
			userRepo := user.NewRepository()
			userSvc := user.NewService(store, userRepo, m.UsersCreated)
			postSvc := post.NewService(store, post.NewRepository(), userRepo, m.PostsCreated)

			for i := 0; i < users; i++ {
				u, err := userSvc.Create(ctx, faker.Name())
				if err != nil {
					return err
				}
				for j := 0; j < postsPerUser; j++ {
					if _, err := postSvc.Create(ctx, u.ID, faker.Paragraph(1, 3, 12, " ")); err != nil {
						return err
					}
				}
			}
			slog.Info("seeded", "users", users, "posts", users*postsPerUser)
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 10, "number of users")
	cmd.Flags().IntVar(&postsPerUser, "posts", 3, "posts per user")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 picks one")
	return cmd
}

package command

import (
	"fmt"
	"time"

	"podcasthub/database"
	"podcasthub/internal/app"
	"podcasthub/internal/seed"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, podcasts, episodes, subscriptions and comments",
	Long: `Load demo data. Every stage is skipped when its table already has rows,
so running seed twice is safe. Migrations are applied first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		audioBase, _ := cmd.Flags().GetString("audio-base-url")
		rngSeed, _ := cmd.Flags().GetUint64("rand-seed")
		if rngSeed == 0 {
			rngSeed = uint64(time.Now().UnixNano())
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := database.RunMigrations(a.SQL, a.Logger); err != nil {
				return err
			}
			s := seed.New(a.Services.Auth, a.Repos, audioBase, rngSeed)
			sum, err := s.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("✓ Seeded %d users, %d podcasts, %d episodes, %d subscriptions, %d comments\n",
				sum.Users, sum.Podcasts, sum.Episodes, sum.Subscriptions, sum.Comments)
			return nil
		})
	},
}

var seedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all podcasts, episodes, subscriptions and comments (accounts are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := seed.New(a.Services.Auth, a.Repos, "", 1).Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("✓ Podcast data cleared")
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().String("audio-base-url", "https://storage.podcasthub.local/audio", "base URL for seeded episode audio")
	seedCmd.Flags().Uint64("rand-seed", 0, "random seed; 0 picks one from the clock")
	seedCmd.AddCommand(seedClearCmd)
	rootCmd.AddCommand(seedCmd)
}

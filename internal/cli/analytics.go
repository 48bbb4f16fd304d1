package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intelliquiz/iqclient/api"
	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/internal/app"
)

func newLeaderboardCmd(s *state) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			if err := admit(cmd, rt, "/leaderboard"); err != nil {
				return err
			}
			entries, err := rt.API.Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No entries yet.")
				return nil
			}
			fmt.Fprintf(out, "%-4s  %-20s  %-14s  %6s  %s\n", "#", "USER", "ROLE", "POINTS", "BADGES")
			for i, e := range entries {
				fmt.Fprintf(out, "%-4d  %-20s  %-14s  %6d  %s\n", i+1, e.Username, e.Role, e.Points, strings.Join(e.Badges, ","))
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", api.DefaultLeaderboardLimit, "number of entries")
	return cmd
}

func newAnalyticsCmd(s *state) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show student analytics and past attempts",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			if err := admit(cmd, rt, auth.StudentHome, auth.RoleStudent); err != nil {
				return err
			}
			stats, err := rt.API.StudentAnalytics(cmd.Context(), user)
			if err != nil {
				return err
			}
			attempts, err := rt.API.Attempts(cmd.Context(), user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Average score: %.1f\n", stats.AverageScore)
			fmt.Fprintf(out, "Accuracy:      %.1f%%\n", stats.Accuracy)
			fmt.Fprintf(out, "Points:        %d\n", stats.Points)
			if len(stats.Badges) > 0 {
				fmt.Fprintf(out, "Badges:        %s\n", strings.Join(stats.Badges, ", "))
			}
			if len(attempts) > 0 {
				fmt.Fprintf(out, "\n%-8s  %-20s  %5s  %s\n", "ID", "TOPIC", "SCORE", "DATE")
				for _, a := range attempts {
					fmt.Fprintf(out, "%-8d  %-20s  %5d  %s\n", a.ID, a.Topic, a.Score, a.Date)
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (defaults to the logged in user)")
	return cmd
}

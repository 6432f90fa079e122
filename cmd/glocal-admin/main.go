// glocal-admin is an operator CLI for account and data maintenance
// tasks that have no HTTP surface: role changes, bans by email, and
// notification cleanup.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/config"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

var rootCmd = &cobra.Command{
	Use:   "glocal-admin",
	Short: "Operator tooling for the Glocal backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: .env file not found, using system environment variables")
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if err := logger.Initialize(cfg.LogLevel, ""); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		if err := database.Initialize(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = database.Close()
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Set a user's role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		switch models.UserRole(role) {
		case models.RoleUser, models.RoleModerator, models.RoleAdmin:
		default:
			return fmt.Errorf("invalid role %q (want user, moderator or admin)", role)
		}

		user, err := findUserByEmail(args[0])
		if err != nil {
			return err
		}
		if err := database.DB.Model(user).Update("role", role).Error; err != nil {
			return fmt.Errorf("updating role: %w", err)
		}
		fmt.Printf("%s (%s) is now %s\n", user.Username, user.Email, role)
		return nil
	},
}

var banCmd = &cobra.Command{
	Use:   "ban <email>",
	Short: "Ban or unban an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lift, _ := cmd.Flags().GetBool("lift")

		user, err := findUserByEmail(args[0])
		if err != nil {
			return err
		}
		if err := database.DB.Model(user).Update("is_banned", !lift).Error; err != nil {
			return fmt.Errorf("updating ban state: %w", err)
		}
		if lift {
			fmt.Printf("%s unbanned\n", user.Username)
		} else {
			fmt.Printf("%s banned\n", user.Username)
		}
		return nil
	},
}

var purgeNotificationsCmd = &cobra.Command{
	Use:   "purge-notifications",
	Short: "Delete read notifications older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days < 1 {
			return fmt.Errorf("retention must be at least 1 day")
		}

		cutoff := time.Now().AddDate(0, 0, -days)
		res := database.DB.
			Where("is_read = ? AND created_at < ?", true, cutoff).
			Delete(&models.Notification{})
		if res.Error != nil {
			return fmt.Errorf("purging notifications: %w", res.Error)
		}
		fmt.Printf("Deleted %d notifications older than %s\n", res.RowsAffected, cutoff.Format("2006-01-02"))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts for the main tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := []struct {
			name  string
			model interface{}
		}{
			{"users", &models.User{}},
			{"posts", &models.Post{}},
			{"comments", &models.Comment{}},
			{"polls", &models.Poll{}},
			{"poll_votes", &models.PollVote{}},
			{"bookings", &models.Booking{}},
			{"subscriptions", &models.ArtistSubscription{}},
			{"notifications", &models.Notification{}},
			{"reports", &models.Report{}},
		}
		for _, t := range tables {
			var count int64
			if err := database.DB.Model(t.model).Count(&count).Error; err != nil {
				return fmt.Errorf("counting %s: %w", t.name, err)
			}
			fmt.Printf("%-15s %d\n", t.name, count)
		}
		return nil
	},
}

func findUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("no user with email %s", email)
	}
	return &user, nil
}

func init() {
	promoteCmd.Flags().String("role", "moderator", "Role to assign: user, moderator or admin")
	banCmd.Flags().Bool("lift", false, "Lift the ban instead of imposing it")
	purgeNotificationsCmd.Flags().Int("days", 90, "Retention window in days")

	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(banCmd)
	rootCmd.AddCommand(purgeNotificationsCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

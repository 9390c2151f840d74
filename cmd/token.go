package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/qrave1/RoomRelay/internal/application/config"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/middleware"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin JWT for the cleanup and eviction journal endpoints",
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := config.New()
		if err != nil {
			log.Fatalf("could not load config: %v", err)
		}

		if cfg.AdminJWTSecret == "" {
			log.Fatal("ADMIN_JWT_SECRET is empty: admin endpoints are not protected")
		}

		token, err := middleware.NewAdminToken(cfg.AdminJWTSecret, subject, time.Now(), ttl)
		if err != nil {
			log.Fatalf("sign token: %v", err)
		}

		fmt.Println(token)
	},
}

func init() {
	tokenCmd.Flags().String("subject", "operator", "token subject, written to the cleanup log")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(tokenCmd)
}

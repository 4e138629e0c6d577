package commands

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
	"github.com/mamadbah2/telelbirds/internal/service/accounts"
)

var newUser accounts.NewUser

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create a user account",
	Long: `Create a user together with its settings row.

The password is taken from --password or, when omitted, from the
TELELBIRDS_PASSWORD environment variable.

Examples:
  telelbirds createuser --username admin --email admin@telelbirds.com --superuser
  telelbirds createuser --username keeper --staff --password 's3cret-pass'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if newUser.Password == "" {
			newUser.Password = os.Getenv("TELELBIRDS_PASSWORD")
		}
		if err := validator.New().Struct(newUser); err != nil {
			return fmt.Errorf("invalid user: %w", err)
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := postgres.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = postgres.Close(db) }()

		svc := accounts.NewService(postgres.NewAccountRepository(db), cfg.Auth, log.Named("svc.accounts"))
		user, err := svc.CreateUser(cmd.Context(), newUser)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, staff=%t, superuser=%t)\n",
			user.Username, user.ID, user.IsStaff, user.IsSuperuser)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createUserCmd)

	createUserCmd.Flags().StringVar(&newUser.Username, "username", "", "Login name (required)")
	createUserCmd.Flags().StringVar(&newUser.Email, "email", "", "E-mail address")
	createUserCmd.Flags().StringVar(&newUser.Password, "password", "", "Password, at least 8 characters")
	createUserCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "First name")
	createUserCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "Last name")
	createUserCmd.Flags().BoolVar(&newUser.IsStaff, "staff", false, "Allow managing farm records")
	createUserCmd.Flags().BoolVar(&newUser.IsSuperuser, "superuser", false, "Grant every permission")
	_ = createUserCmd.MarkFlagRequired("username")
}

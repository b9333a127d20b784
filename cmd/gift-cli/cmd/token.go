package cmd

import (
	"fmt"

	"gift-core/internal/model"
	"gift-core/pkg/auth"
	"gift-core/pkg/config"

	"github.com/spf13/cobra"
)

// tokenCmd 为指定账户签发 Bearer Token，方便本地调试接口
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "签发访问令牌",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, _ := cmd.Flags().GetString("account")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		switch model.Role(role) {
		case model.RoleEndUser, model.RoleCreator, model.RoleAdmin:
		default:
			return fmt.Errorf("unknown role %q", role)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if ttl <= 0 {
			ttl = cfg.Auth.TokenTTL
		}

		token, err := auth.NewManager(cfg.Auth.JWTSecret, ttl).Issue(account, role)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("account", "", "账户 ID，例如 user-1")
	tokenCmd.Flags().String("role", string(model.RoleEndUser), "角色: end_user | creator | admin")
	tokenCmd.Flags().Duration("ttl", 0, "有效期，默认取配置 auth.token_ttl")

	tokenCmd.MarkFlagRequired("account")
}

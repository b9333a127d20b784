package cmd

import (
	"encoding/json"
	"os"

	"gift-core/internal/advisor"
	"gift-core/pkg/config"

	"github.com/spf13/cobra"
)

// riskCmd 用本地规则试算提现风险，不访问外部服务
var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "试算提现风险等级",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetInt64("amount")
		earnings, _ := cmd.Flags().GetInt64("earnings")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		policy := advisor.NewPolicyAdvisor(cfg.Risk.ReviewThreshold, cfg.Risk.MinimumAmount)
		opinion, err := policy.AssessWithdrawalRisk(cmd.Context(), amount, earnings)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(opinion)
	},
}

func init() {
	rootCmd.AddCommand(riskCmd)

	riskCmd.Flags().Int64("amount", 0, "提现金额")
	riskCmd.Flags().Int64("earnings", 0, "创作者当前收益")

	riskCmd.MarkFlagRequired("amount")
	riskCmd.MarkFlagRequired("earnings")
}

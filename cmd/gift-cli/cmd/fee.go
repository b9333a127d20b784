package cmd

import (
	"fmt"

	"gift-core/internal/service"

	"github.com/spf13/cobra"
)

var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "试算礼物价格的平台手续费拆分",
	RunE: func(cmd *cobra.Command, args []string) error {
		price, _ := cmd.Flags().GetInt64("price")
		rateFlag, _ := cmd.Flags().GetString("rate")

		if price <= 0 {
			return fmt.Errorf("price must be positive, got %d", price)
		}
		rate, err := service.ParseFeeRate(rateFlag)
		if err != nil {
			return err
		}

		fee, net := service.SplitFee(price, rate)
		fmt.Printf("price:   %d\n", price)
		fmt.Printf("rate:    %s\n", rate.String())
		fmt.Printf("fee:     %d\n", fee)
		fmt.Printf("creator: %d\n", net)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feeCmd)

	feeCmd.Flags().Int64("price", 0, "礼物价格 (整数货币单位)")
	feeCmd.Flags().String("rate", "", "手续费率，默认 0.10")

	feeCmd.MarkFlagRequired("price")
}

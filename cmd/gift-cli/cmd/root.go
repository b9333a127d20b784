package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "gift-cli",
	Short: "礼物账本运维命令行工具",
	Long: `gift-core 的运维工具。
支持签发测试令牌、试算手续费与提现风险、离线校验审计日志以及订阅领域事件。`,
	SilenceUsage: true,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"gift-core/internal/model"
	"gift-core/pkg/crypto_util"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "审计日志工具",
}

// auditVerifyCmd 离线校验导出的审计日志。
// 接受 GET /api/v1/admin/audit-logs 的完整响应体，或者裸的条目数组
var auditVerifyCmd = &cobra.Command{
	Use:   "verify <file.json>",
	Short: "校验审计日志哈希链",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 读取导出文件
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("读取文件失败: %w", err)
		}
		if !gjson.ValidBytes(data) {
			return fmt.Errorf("%s is not valid JSON", args[0])
		}

		// 2. 取出条目数组
		raw := gjson.ParseBytes(data)
		if data := raw.Get("data"); data.IsArray() {
			raw = data
		}
		if !raw.IsArray() {
			return fmt.Errorf("%s does not contain an audit log array", args[0])
		}

		var entries []model.AuditLogEntry
		if err := json.Unmarshal([]byte(raw.Raw), &entries); err != nil {
			return fmt.Errorf("解析审计日志失败: %w", err)
		}

		// 3. 重新计算哈希链
		if err := model.VerifyChain(entries); err != nil {
			return err
		}
		fmt.Printf("✅ 审计链完整，共 %d 条\n", len(entries))
		if n := len(entries); n > 0 {
			fmt.Printf("链头: seq=%d hash=%s\n", entries[n-1].Seq, entries[n-1].Hash)
		}
		fmt.Printf("文件指纹 (blake3): %s\n", crypto_util.CalculateBlake3(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
}

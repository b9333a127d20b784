package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"gift-core/internal/event"
	"gift-core/internal/service/mq"
	"gift-core/pkg/config"
	"gift-core/pkg/database"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "领域事件工具",
}

// eventsTailCmd 订阅一个主题并逐条打印，Ctrl+C 退出
var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "订阅并打印领域事件",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		backend, _ := cmd.Flags().GetString("mq")
		group, _ := cmd.Flags().GetString("group")

		if !slices.Contains(event.AllTopics, topic) {
			return fmt.Errorf("unknown topic %q, want one of %v", topic, event.AllTopics)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if backend == "" {
			backend = cfg.Redis.MQType
		}
		if group == "" {
			group = cfg.Kafka.GroupID
		}

		var consumer mq.Consumer
		switch backend {
		case "kafka":
			consumer = mq.NewKafkaConsumer(cfg.Kafka.Brokers, group)
		case "redis":
			rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer rdb.Close()
			host, _ := os.Hostname()
			consumer = mq.NewRedisConsumer(rdb, group, host)
		default:
			return fmt.Errorf("unsupported mq backend %q, use redis or kafka", backend)
		}
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("正在订阅 %s (%s) ...\n", topic, backend)
		err = consumer.Subscribe(ctx, topic, func(msg *mq.Message) error {
			payload := gjson.ParseBytes(msg.Payload)
			fmt.Printf("[%s] key=%s occurred_at=%s\n  %s\n",
				msg.Topic, msg.Key, payload.Get("occurred_at").String(), payload.Raw)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)

	eventsTailCmd.Flags().String("topic", event.TopicTransaction, "主题名")
	eventsTailCmd.Flags().String("mq", "", "消息队列: redis | kafka，默认取配置 redis.mq_type")
	eventsTailCmd.Flags().String("group", "", "消费组，默认取配置 kafka.group_id")
}

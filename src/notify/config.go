package notify

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SlackBotToken    string        `envconfig:"SLACK_BOT_TOKEN"`
	SlackChannel     string        `envconfig:"SLACK_NOTIFY_CHANNEL"`
	SlackBaseURL     string        `envconfig:"SLACK_BASE_URL" default:"https://slack.com/api"`
	TelegramBotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string        `envconfig:"TELEGRAM_CHAT_ID"`
	TelegramBaseURL  string        `envconfig:"TELEGRAM_BASE_URL" default:"https://api.telegram.org"`
	KafkaBrokers     []string      `envconfig:"KAFKA_BROKERS"`
	KafkaOrdersTopic string        `envconfig:"KAFKA_ORDERS_TOPIC" default:"earningsbot.orders"`
	Timeout          time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

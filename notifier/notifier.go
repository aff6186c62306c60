// Package notifier отправляет уведомления о новых слотах в Telegram.
package notifier

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier отправляет один текст в настроенный канал
type Notifier interface {
	Send(text string) error
}

// New выбирает реализацию по конфигурации. Без токена или chat id
// уведомления просто отключены - это не ошибка.
func New(token string, chatID int64) Notifier {
	if token == "" || chatID == 0 {
		return disabled{}
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("⚠️ Failed to init Telegram bot: %v (notifications disabled)", err)
		return disabled{}
	}

	log.Printf("🤖 Authorized on account %s", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}
}

// Telegram шлет сообщения через Bot API
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func (t *Telegram) Send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return err
	}

	log.Println("✅ Telegram notification sent successfully.")
	return nil
}

type disabled struct{}

func (disabled) Send(string) error {
	log.Println("⚠️ Telegram configuration missing. Skipping notification.")
	return nil
}

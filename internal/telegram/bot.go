// Package telegram is an optional secondary gateway: each chat becomes a
// session and runs through the same exchange pipeline as the websocket
// transport.
package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Exchanger interface {
	Exchange(ctx context.Context, sessionID, question string) (string, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	exchanger Exchanger
}

func New(botToken string, exchanger Exchanger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, exchanger: exchanger}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleIncomingMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Stable per-chat session key so follow-up questions keep their context.
	sessionID := fmt.Sprintf("tg:%d", msg.Chat.ID)
	log.Printf("💬 Telegram chat %d (@%s): %q", msg.Chat.ID, msg.From.UserName, msg.Text)

	answer, err := b.exchanger.Exchange(ctx, sessionID, msg.Text)
	if err != nil {
		log.Printf("❌ Exchange failed for %s: %v", sessionID, err)
		b.sendMessage(msg.Chat.ID, "Sorry, something went wrong. Please try again.")
		return
	}
	b.sendMessage(msg.Chat.ID, answer)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

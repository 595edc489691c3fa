package main

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// BotAPI is the outbound half of the Telegram client: replies only.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UpdateSource is the inbound half: long-polled updates and a way to stop
// polling. *tgbotapi.BotAPI satisfies both interfaces.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

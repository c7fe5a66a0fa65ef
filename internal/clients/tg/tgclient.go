package tg

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/messages"
)

const (
	defaultUpdateOffset = 0
	timeoutSeconds      = 30
	parseModeHTML       = "HTML"
)

type config interface {
	Token() string
	Debug() bool
}

type messageHandler interface {
	HandleIncomingMessage(ctx context.Context, msg messages.Message) error
}

type Client struct {
	client *tgbotapi.BotAPI
}

func New(cfg config) (*Client, error) {
	client, err := tgbotapi.NewBotAPI(cfg.Token())
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewBotApi")
	}
	client.Debug = cfg.Debug()
	return &Client{client}, nil
}

// SendMessage sends HTML formatted text.
func (c *Client) SendMessage(text string, userID int64) error {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = parseModeHTML
	_, err := c.client.Send(msg)
	if err != nil {
		return errors.Wrap(err, "client.Send")
	}
	return nil
}

func (c *Client) SendDocument(name string, data []byte, userID int64) error {
	doc := tgbotapi.NewDocument(userID, tgbotapi.FileBytes{Name: name, Bytes: data})
	_, err := c.client.Send(doc)
	if err != nil {
		return errors.Wrap(err, "client.Send document")
	}
	return nil
}

func (c *Client) ListenUpdates(ctx context.Context, handler messageHandler) {
	u := tgbotapi.NewUpdate(defaultUpdateOffset)
	u.Timeout = 60

	updates := c.client.GetUpdatesChan(u)

	logger.Info("Start listening for messages")

	for {
		select {
		case <-ctx.Done():
			c.client.StopReceivingUpdates()
			logger.Info("Stop listening for messages")
			return
		case update := <-updates:
			c.listenOnce(ctx, update, handler)
		}
	}
}

func (c *Client) listenOnce(ctx context.Context, update tgbotapi.Update, handler messageHandler) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	logger.Info(update.Message.Text, zap.String("user", update.Message.From.UserName))

	ctx, cancel := context.WithTimeout(ctx, time.Second*timeoutSeconds)
	defer cancel()

	err := handler.HandleIncomingMessage(ctx, messages.Message{
		Text:   update.Message.Text,
		UserID: update.Message.From.ID,
	})
	if err != nil {
		logger.Error("error processing message:", zap.Error(err))
	}
}

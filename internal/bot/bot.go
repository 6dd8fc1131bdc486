package bot

import (
	"context"
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/repository"
	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/yougile"
)

const (
	cbColumnPrefix   = "column_"
	maxColumnButtons = 10
)

// telegramAPI is the slice of the Bot API the handlers actually use.
// *tgbotapi.BotAPI satisfies it.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot aggregates the Telegram transport with user storage and the YouGile
// client.
type Bot struct {
	api      telegramAPI
	poller   *tgbotapi.BotAPI
	username string
	userRepo *repository.UserRepository
	yougile  *yougile.Client
}

func New(token string, userRepo *repository.UserRepository, client *yougile.Client) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		poller:   api,
		username: api.Self.UserName,
		userRepo: userRepo,
		yougile:  client,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.poller.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.poller.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	return b.handleMention(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "link_yougile":
		return b.handleLinkYougile(ctx, msg)
	case "link_username":
		return b.handleLinkUsername(ctx, msg)
	case "set_default_column":
		return b.handleSetDefaultColumn(ctx, msg)
	case "me":
		return b.handleProfile(ctx, msg)
	default:
		// Unknown commands stay silent, same as unaddressed text: the bot
		// lives in group chats and must not add noise.
		return nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func escape(s string) string {
	return html.EscapeString(s)
}

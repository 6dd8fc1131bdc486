package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/model"
	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/yougile"
)

const (
	replyStartFirst = "Сначала запустите бота: /start"
	replyLinkFirst  = "У вас не настроена интеграция с YouGile.\nИспользуйте /link_yougile ваш@email.com"
	replyConfigFmt  = "⚠️ Ошибка конфигурации YouGile.\nСообщите администратору: %s"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.userRepo.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		return err
	}
	b.captureUsername(ctx, user, msg.From)

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я бот для интеграции с YouGile.</b>\n\nКоманды:\n"+
			"• /link_yougile &lt;email&gt; — привязать аккаунт YouGile\n"+
			"• /link_username — сохранить Telegram-ник, чтобы вас назначали исполнителем\n"+
			"• /set_default_column — выбрать колонку по умолчанию\n"+
			"• /me — показать профиль\n\n"+
			"Просто упомяни меня в сообщении, чтобы создать задачу:\n"+
			"<code>@%s Название задачи - описание</code>",
		escape(name), escape(b.username),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleLinkYougile(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		return b.sendText(msg.Chat.ID,
			"Укажите email, который вы используете в YouGile:\n<code>/link_yougile your.email@company.com</code>")
	}
	email := args[0]

	user, err := b.userRepo.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		return err
	}

	if err := b.sendText(msg.Chat.ID, "🔍 Проверяю email в YouGile…"); err != nil {
		return err
	}

	yougileID, err := b.yougile.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, yougile.ErrNotConfigured) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf(replyConfigFmt, escape(err.Error())))
		}
		log.Printf("find user by email: %v", err)
		return b.sendText(msg.Chat.ID,
			"❌ Не удалось подключиться к YouGile.\nПопробуйте позже или сообщите администратору.")
	}

	if yougileID == "" {
		return b.sendText(msg.Chat.ID, fmt.Sprintf(
			"❌ Пользователь с email %s не найден в вашей компании YouGile.\nУбедитесь, что:\n"+
				"1. Вы используете корпоративный email\n"+
				"2. Вы есть в списке сотрудников YouGile\n"+
				"3. Email написан точно так же, как в профиле",
			escape(email),
		))
	}

	if err := b.userRepo.SetYougileCredentials(ctx, user.TelegramID, email, yougileID); err != nil {
		return err
	}
	b.captureUsername(ctx, user, msg.From)

	log.Printf("[info] user %d linked yougile account", user.TelegramID)

	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"✅ Аккаунт YouGile успешно привязан!\n\nEmail: %s\nYouGile ID: %s\n\nТеперь вы можете:\n"+
			"• Создавать задачи, упоминая меня в сообщениях\n"+
			"• Настроить колонку по умолчанию: /set_default_column",
		escape(email), escape(shortID(yougileID)),
	))
}

func (b *Bot) handleLinkUsername(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From.UserName == "" {
		return b.sendText(msg.Chat.ID,
			"У вас не задан username в Telegram.\nУстановите его в настройках Telegram и повторите команду.")
	}

	user, err := b.userRepo.FindByTelegramID(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, replyStartFirst)
		}
		return err
	}

	if err := b.userRepo.SetTelegramUsername(ctx, user.TelegramID, msg.From.UserName); err != nil {
		return err
	}

	log.Printf("[info] user %d saved username %s", user.TelegramID, msg.From.UserName)

	if user.IsLinked() {
		return b.sendText(msg.Chat.ID, fmt.Sprintf(
			"✅ Ник @%s сохранён.\nТеперь коллеги могут назначать вам задачи, упоминая @%s в тексте.",
			escape(msg.From.UserName), escape(msg.From.UserName),
		))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"✅ Ник @%s сохранён.\nЧтобы получать задачи как исполнитель, привяжите аккаунт YouGile: /link_yougile ваш@email.com",
		escape(msg.From.UserName),
	))
}

func (b *Bot) handleProfile(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.userRepo.FindByTelegramID(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, replyStartFirst)
		}
		return err
	}

	var builder strings.Builder
	builder.WriteString("👤 <b>Ваш профиль</b>\n")
	builder.WriteString(fmt.Sprintf("• Telegram ID: <code>%d</code>\n", user.TelegramID))
	if user.TelegramUsername != "" {
		builder.WriteString(fmt.Sprintf("• Ник: @%s\n", escape(user.TelegramUsername)))
	} else {
		builder.WriteString("• Ник: не задан (/link_username)\n")
	}
	if user.IsLinked() {
		builder.WriteString(fmt.Sprintf("• YouGile: %s\n", escape(user.YougileEmail)))
		builder.WriteString(fmt.Sprintf("• YouGile ID: %s\n", escape(shortID(user.YougileID))))
		if user.HasDefaultColumn() {
			builder.WriteString("• Колонка по умолчанию: настроена\n")
		} else {
			builder.WriteString("• Колонка по умолчанию: не настроена (/set_default_column)\n")
		}
	} else {
		builder.WriteString("• YouGile: не привязан (/link_yougile)\n")
	}

	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleSetDefaultColumn(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.userRepo.FindByTelegramID(ctx, msg.From.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if user == nil || !user.IsLinked() {
		return b.sendText(msg.Chat.ID,
			"Сначала привяжите аккаунт YouGile:\n/link_yougile ваш@email.com")
	}

	if err := b.sendText(msg.Chat.ID, "⏳ Загружаю список колонок…"); err != nil {
		return err
	}

	columns, err := b.yougile.ListColumns(ctx)
	if err != nil {
		if errors.Is(err, yougile.ErrNotConfigured) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf(replyConfigFmt, escape(err.Error())))
		}
		log.Printf("list columns: %v", err)
		return b.sendText(msg.Chat.ID, "❌ Ошибка при загрузке колонок.\nПопробуйте позже.")
	}
	if len(columns) == 0 {
		return b.sendText(msg.Chat.ID,
			"❌ Не удалось загрузить колонки.\nУбедитесь, что у вас есть доступ к проекту.")
	}

	if len(columns) > maxColumnButtons {
		columns = columns[:maxColumnButtons]
	}
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, col := range columns {
		title := col.Title
		if title == "" {
			title = "Без названия"
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title, cbColumnPrefix+col.ID),
		))
	}

	return b.sendWithReplyMarkup(msg.Chat.ID, "Выберите колонку для новых задач:",
		tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	if !strings.HasPrefix(cb.Data, cbColumnPrefix) {
		return nil
	}
	columnID := strings.TrimPrefix(cb.Data, cbColumnPrefix)

	var text string
	if err := b.userRepo.SetDefaultColumn(ctx, cb.From.ID, columnID); err != nil {
		log.Printf("set default column for %d: %v", cb.From.ID, err)
		text = "❌ Не удалось сохранить колонку.\nПопробуйте ещё раз."
	} else {
		log.Printf("[info] user %d set default column %s", cb.From.ID, columnID)
		text = "✅ Колонка по умолчанию сохранена.\nТеперь все новые задачи будут создаваться в этой колонке."
	}

	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	_, err := b.api.Send(edit)
	return err
}

// handleMention creates a YouGile task from free text addressed to the bot.
// Text without the bot handle produces no reply at all.
func (b *Bot) handleMention(ctx context.Context, msg *tgbotapi.Message) error {
	taskText, ok := stripBotMention(msg, b.username)
	if !ok {
		return nil
	}

	if taskText == "" {
		return b.sendText(msg.Chat.ID, fmt.Sprintf(
			"Вы не указали название задачи.\nПример: <code>@%s Исправить баг с авторизацией - срочно</code>",
			escape(b.username),
		))
	}

	user, err := b.userRepo.FindByTelegramID(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, replyStartFirst)
		}
		return err
	}
	if !user.IsLinked() {
		return b.sendText(msg.Chat.ID, replyLinkFirst)
	}
	b.captureUsername(ctx, user, msg.From)

	if err := b.sendText(msg.Chat.ID, "⏳ Создаю задачу в YouGile…"); err != nil {
		return err
	}

	executorHandle, rest := extractExecutor(taskText)
	executorID := ""
	if executorHandle != "" {
		id, err := b.userRepo.FindYougileIDByUsername(ctx, executorHandle)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		executorID = id
	}

	title, description := splitTitleDescription(rest)

	task, err := b.yougile.CreateTask(ctx, title, description, user.DefaultColumnID, executorID)
	if err != nil {
		if errors.Is(err, yougile.ErrNotConfigured) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf(replyConfigFmt, escape(err.Error())))
		}
		log.Printf("create task: %v", err)
		return b.sendText(msg.Chat.ID, "❌ Ошибка при создании задачи.\nПопробуйте позже.")
	}
	if task == nil {
		return b.sendText(msg.Chat.ID, "❌ Не удалось создать задачу. Проверьте логи сервера.")
	}

	log.Printf("[info] task %s created by %d", task.ID, user.TelegramID)

	var builder strings.Builder
	builder.WriteString("✅ <b>Задача создана!</b>\n\n")
	builder.WriteString(fmt.Sprintf("%s\n", escape(task.Title)))
	builder.WriteString(fmt.Sprintf("<a href=\"%s\">Открыть в YouGile</a>\n", task.URL))
	if description != "" {
		builder.WriteString(fmt.Sprintf("📝 %s\n", escape(description)))
	}
	if executorHandle != "" {
		if executorID != "" {
			builder.WriteString(fmt.Sprintf("Исполнитель: @%s\n", escape(executorHandle)))
		} else {
			builder.WriteString(fmt.Sprintf(
				"Исполнитель: @%s (не найден в YouGile, задача создана без исполнителя)\n",
				escape(executorHandle),
			))
		}
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.DisableWebPagePreview = true
	_, err = b.api.Send(reply)
	return err
}

// captureUsername opportunistically stores the Telegram handle the first
// time the platform supplies one.
func (b *Bot) captureUsername(ctx context.Context, user *model.User, from *tgbotapi.User) {
	if from.UserName == "" || user.TelegramUsername != "" {
		return
	}
	if err := b.userRepo.SetTelegramUsername(ctx, user.TelegramID, from.UserName); err != nil {
		log.Printf("capture username for %d: %v", user.TelegramID, err)
		return
	}
	user.TelegramUsername = from.UserName
}

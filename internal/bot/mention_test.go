package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestStripBotMentionByEntity(t *testing.T) {
	msg := &tgbotapi.Message{
		Text: "@taskbot Fix login bug",
		Entities: []tgbotapi.MessageEntity{
			{Type: "mention", Offset: 0, Length: 8},
		},
	}

	text, ok := stripBotMention(msg, "taskbot")
	assert.True(t, ok)
	assert.Equal(t, "Fix login bug", text)
}

func TestStripBotMentionEntityCaseInsensitive(t *testing.T) {
	msg := &tgbotapi.Message{
		Text: "Привет @TaskBot сделай дело",
		Entities: []tgbotapi.MessageEntity{
			{Type: "mention", Offset: 7, Length: 8},
		},
	}

	text, ok := stripBotMention(msg, "taskbot")
	assert.True(t, ok)
	assert.Equal(t, "Привет  сделай дело", text)
}

func TestStripBotMentionSubstringFallback(t *testing.T) {
	msg := &tgbotapi.Message{Text: "@taskbot Deploy release - final checks pending"}

	text, ok := stripBotMention(msg, "taskbot")
	assert.True(t, ok)
	assert.Equal(t, "Deploy release - final checks pending", text)
}

func TestStripBotMentionIgnoresOtherText(t *testing.T) {
	for _, text := range []string{
		"просто болтовня в чате",
		"@alice глянь пожалуйста",
		"",
	} {
		msg := &tgbotapi.Message{Text: text}
		_, ok := stripBotMention(msg, "taskbot")
		assert.False(t, ok, "text %q must not address the bot", text)
	}
}

func TestStripBotMentionOnlyHandle(t *testing.T) {
	msg := &tgbotapi.Message{Text: "@taskbot"}

	text, ok := stripBotMention(msg, "taskbot")
	assert.True(t, ok)
	assert.Empty(t, text)
}

func TestExtractExecutorLastTokenWins(t *testing.T) {
	handle, rest := extractExecutor("Fix login bug - affects @alice and @bob")
	assert.Equal(t, "bob", handle)
	assert.Equal(t, "Fix login bug - affects @alice and", rest)
}

func TestExtractExecutorSingleToken(t *testing.T) {
	handle, rest := extractExecutor("Проверить отчёт @alice")
	assert.Equal(t, "alice", handle)
	assert.Equal(t, "Проверить отчёт", rest)
}

func TestExtractExecutorNoToken(t *testing.T) {
	handle, rest := extractExecutor("Deploy release - final checks pending")
	assert.Empty(t, handle)
	assert.Equal(t, "Deploy release - final checks pending", rest)
}

func TestSplitTitleDescription(t *testing.T) {
	title, description := splitTitleDescription("Deploy release - final checks pending")
	assert.Equal(t, "Deploy release", title)
	assert.Equal(t, "final checks pending", description)

	title, description = splitTitleDescription("Only a title here")
	assert.Equal(t, "Only a title here", title)
	assert.Empty(t, description)

	// Only the first separator splits.
	title, description = splitTitleDescription("a - b - c")
	assert.Equal(t, "a", title)
	assert.Equal(t, "b - c", description)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abcdef12...", shortID("abcdef1234567890"))
	assert.Equal(t, "short", shortID("short"))
	assert.Equal(t, "12345678", shortID("12345678"))
}

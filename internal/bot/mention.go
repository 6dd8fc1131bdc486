package bot

import (
	"regexp"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var handlePattern = regexp.MustCompile(`@(\w+)`)

// stripBotMention decides whether the message addresses the bot and returns
// the text with the bot handle removed. Structured mention entities are
// checked first; plain substring match covers clients that send no entities.
func stripBotMention(msg *tgbotapi.Message, botUsername string) (string, bool) {
	handle := "@" + botUsername

	matched := ""
	for _, entity := range msg.Entities {
		if entity.Type != "mention" {
			continue
		}
		if text := entityText(msg.Text, entity); strings.EqualFold(text, handle) {
			matched = text
			break
		}
	}
	if matched == "" {
		if !strings.Contains(msg.Text, handle) {
			return "", false
		}
		matched = handle
	}

	return strings.TrimSpace(strings.ReplaceAll(msg.Text, matched, "")), true
}

// entityText extracts the substring an entity points at. Telegram counts
// entity offsets in UTF-16 code units.
func entityText(text string, entity tgbotapi.MessageEntity) string {
	units := utf16.Encode([]rune(text))
	if entity.Offset < 0 || entity.Length < 0 || entity.Offset+entity.Length > len(units) {
		return ""
	}
	return string(utf16.Decode(units[entity.Offset : entity.Offset+entity.Length]))
}

// extractExecutor pulls the last @handle token out of the text and removes
// it. The last occurrence wins, so a title may legitimately contain
// "@"-prefixed words before the executor mention.
func extractExecutor(text string) (handle, rest string) {
	matches := handlePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return "", text
	}
	last := matches[len(matches)-1]
	handle = text[last[2]:last[3]]
	rest = strings.TrimSpace(strings.TrimRight(text[:last[0]], " ") + text[last[1]:])
	return handle, rest
}

// splitTitleDescription splits task text on the first " - " separator.
// Without a separator the whole trimmed text is the title.
func splitTitleDescription(text string) (title, description string) {
	parts := strings.SplitN(text, " - ", 2)
	title = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		description = strings.TrimSpace(parts[1])
	}
	return title, description
}

// shortID truncates a YouGile id for display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

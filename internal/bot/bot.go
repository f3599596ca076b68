package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/models"
	"github.com/xaenox/osint-chat/internal/storage"
)

// maxMessageLength is Telegram's limit for one text message.
const maxMessageLength = 4096

// ChatHandler answers one conversational turn.
type ChatHandler interface {
	Handle(ctx context.Context, req models.ChatRequest) models.ChatResponse
}

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api     botAPI
	chat    ChatHandler
	storage storage.Storage
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func New(token string, chat ChatHandler, storage storage.Storage, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("account", api.Self.UserName))

	return newBot(api, chat, storage, logger), nil
}

func newBot(api botAPI, chat ChatHandler, storage storage.Storage, logger *zap.Logger) *Bot {
	return &Bot{
		api:     api,
		chat:    chat,
		storage: storage,
		logger:  logger.Named("telegram"),
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Start polls for updates until ctx is canceled, then waits for in-flight
// messages to finish.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}

			wg.Add(1)
			go func(message *tgbotapi.Message) {
				defer wg.Done()
				b.handleMessage(ctx, message)
			}(update.Message)
		}
	}
}

// conversationKey scopes stored context to one chat.
func conversationKey(chatID int64) string {
	return fmt.Sprintf("telegram:%d", chatID)
}

// chatLock serializes turns within one chat so a conversation's context is
// never read and written by two turns at once.
func (b *Bot) chatLock(chatID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		b.locks[chatID] = l
	}
	return l
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	lock := b.chatLock(message.Chat.ID)
	lock.Lock()
	defer lock.Unlock()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		b.sendMessage(message.Chat.ID, "Send me a question as text, e.g. \"find accounts of johndoe\".")
		return
	}

	key := conversationKey(message.Chat.ID)
	logger := b.logger.With(zap.Int64("chat_id", message.Chat.ID))

	cc, err := b.storage.LoadContext(ctx, key)
	if err != nil {
		logger.Warn("Failed to load conversation context", zap.Error(err))
	}

	resp := b.chat.Handle(ctx, models.ChatRequest{
		Query:          text,
		LastUsername:   cc.LastUsername,
		ConversationID: key,
	})

	if err := b.storage.SaveContext(ctx, key, resp.Context()); err != nil {
		logger.Error("Failed to save conversation context", zap.Error(err))
	}

	b.sendReply(message.Chat.ID, message.MessageID, resp.Response)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "reset":
		b.handleReset(ctx, message)
	case "context":
		b.handleContext(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to the OSINT assistant! 🔎
I can find where a username is registered, assess how suspicious it looks and write a short risk report.

Try "find accounts of johndoe", then "is he suspicious?".
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/context - Show the username I am tracking
/reset - Forget the tracked username

You can ask:
- find accounts of <username>
- is <username> suspicious?
- which platform is the highest risk?
- analyze <username>
- generate a report for <username>`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleReset(ctx context.Context, message *tgbotapi.Message) {
	if err := b.storage.DeleteContext(ctx, conversationKey(message.Chat.ID)); err != nil {
		b.logger.Error("Failed to reset conversation context",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't reset the conversation. Please try again.")
		return
	}
	b.sendMessage(message.Chat.ID, "Conversation reset. Which username should I look at next?")
}

func (b *Bot) handleContext(ctx context.Context, message *tgbotapi.Message) {
	cc, err := b.storage.LoadContext(ctx, conversationKey(message.Chat.ID))
	if err != nil {
		b.logger.Error("Failed to load conversation context",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't read the conversation context.")
		return
	}

	if cc.LastUsername == "" {
		b.sendMessage(message.Chat.ID, "I'm not tracking any username yet.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "*Tracking username:* "+escapeMarkdown(cc.LastUsername))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send context message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

// escapeMarkdown escapes special characters for MarkdownV2
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

// splitMessage breaks text into chunks Telegram accepts, preferring line
// boundaries.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if current.Len()+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func (b *Bot) sendReply(chatID int64, replyToID int, text string) {
	for i, chunk := range splitMessage(text, maxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == 0 {
			msg.ReplyToMessageID = replyToID
		}
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("Failed to send reply",
				zap.Error(err),
				zap.Int64("chat_id", chatID))
			return
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

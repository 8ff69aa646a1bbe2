package telegram

import (
	"context"
	"strconv"
	"sync"

	"banksentinel/config"
	"banksentinel/pkg/logger"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Notifier pushes operational messages (regime-shift alerts, collector
// health) to a single Telegram chat, throttled by a global limiter so a
// burst of alerts cannot trip Telegram's flood control.
type Notifier struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	bot           *telebot.Bot
	chatID        int64
	globalLimiter *rate.Limiter
	mu            sync.Mutex
}

func NewNotifier(cfg *config.TelegramConfig, log *logger.Logger, bot *telebot.Bot) *Notifier {
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil && cfg.Enabled {
		log.Warn("Invalid telegram chat id, notifications disabled", logger.StringField("chat_id", cfg.ChatID))
	}

	return &Notifier{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		chatID:        chatID,
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.MaxRequestPerSecond), cfg.MaxRequestPerSecond),
	}
}

// Send delivers a markdown message to the configured chat. A disabled or
// misconfigured notifier is a silent no-op, alerting must never break a run.
func (n *Notifier) Send(ctx context.Context, message string) error {
	if !n.cfg.Enabled || n.bot == nil || n.chatID == 0 {
		return nil
	}

	n.mu.Lock()
	err := n.globalLimiter.Wait(ctx)
	n.mu.Unlock()
	if err != nil {
		return err
	}

	_, err = n.bot.Send(&telebot.Chat{ID: n.chatID}, message, telebot.ModeMarkdown)
	if err != nil {
		n.log.ErrorContext(ctx, "Failed to send telegram notification", logger.ErrorField(err))
		return err
	}
	return nil
}

package bot

import (
	"context"
	"strings"
	"time"

	"github.com/isotoolkit/keeper/internal/access"
	"github.com/isotoolkit/keeper/internal/catalog"
	"github.com/isotoolkit/keeper/internal/chat"
	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/folders"
	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/relay"
	"github.com/isotoolkit/keeper/internal/stats"
)

// Pinger is the health-check dependency of the status commands.
type Pinger interface {
	Ping(ctx context.Context, url string, timeout time.Duration) domain.PingResult
	Wake(ctx context.Context, url string, timeout, retryDelay time.Duration) domain.PingResult
}

// Deps carries everything the command handlers need.
type Deps struct {
	Chat    chat.Client
	Gate    *access.Gate
	Folders *folders.Manager
	Relay   *relay.Service
	Fetcher *relay.Fetcher
	Catalog *catalog.Client
	Pinger  Pinger
	Counter *stats.Counter
	Logger  logger.Logger

	TargetURL      string
	PingTimeout    time.Duration
	WakeRetryDelay time.Duration
}

type handlerFunc func(ctx context.Context, m *chat.Message, args string)

// Bot routes inbound chat commands to handlers. Gated commands are
// silently dropped for unauthorized operators; owner-only commands answer
// with a visible refusal instead. The asymmetry is deliberate: probes
// learn nothing, while an authenticated owner gets told why a command
// failed.
type Bot struct {
	d         Deps
	gated     map[string]handlerFunc
	ownerOnly map[string]handlerFunc
}

func New(d Deps) *Bot {
	b := &Bot{d: d}

	b.gated = map[string]handlerFunc{
		"start":         b.handleStart,
		"help":          b.handleStart,
		"check":         b.handleCheck,
		"status":        b.handleCheck,
		"wake":          b.handleWake,
		"stats":         b.handleStats,
		"upload":        b.handleUpload,
		"fetch":         b.handleFetch,
		"info":          b.handleInfo,
		"list":          b.handleList,
		"folder_create": b.handleFolderCreate,
		"folder_list":   b.handleFolderList,
		"folder_set":    b.handleFolderSet,
	}
	b.ownerOnly = map[string]handlerFunc{
		"allow": b.handleAllow,
		"deny":  b.handleDeny,
		"users": b.handleUsers,
	}

	return b
}

// Run consumes updates until ctx is done. Each command is handled on its
// own goroutine; handlers from different operators interleave freely.
func (b *Bot) Run(ctx context.Context) error {
	b.d.Logger.Info("bot started",
		logger.String("target", b.d.TargetURL),
		logger.Int64("owner_id", b.d.Gate.Owner()))

	for msg := range b.d.Chat.Updates(ctx) {
		m := msg
		go b.dispatch(ctx, &m)
	}
	return ctx.Err()
}

// dispatch parses and routes one message. A panicking handler is logged
// and turned into a generic failure message; it never takes down the
// update loop or other in-flight commands.
func (b *Bot) dispatch(ctx context.Context, m *chat.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.d.Logger.Errorf("command handler panicked: %v", r)
			b.reply(ctx, m, "❌ Something went wrong. Please try again.")
		}
	}()

	cmd, args, ok := parseCommand(m.Text)
	if !ok {
		return
	}

	if h, found := b.ownerOnly[cmd]; found {
		// Visible refusal for non-owners, even unauthorized ones.
		if m.From.ID != b.d.Gate.Owner() {
			b.reply(ctx, m, "❌ Owner only command")
			return
		}
		h(ctx, m, args)
		return
	}

	h, found := b.gated[cmd]
	if !found {
		return
	}
	if !b.d.Gate.Authorized(m.From.ID) {
		// Silent drop: no signal distinguishes "offline" from "not allowed".
		return
	}
	h(ctx, m, args)
}

// parseCommand splits "/cmd@botname args" into its command and argument
// string.
func parseCommand(text string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return head, strings.TrimSpace(rest), true
}

// reply posts a new message, logging send failures.
func (b *Bot) reply(ctx context.Context, m *chat.Message, text string) int {
	id, err := b.d.Chat.Send(ctx, m.ChatID, text)
	if err != nil {
		b.d.Logger.Warn("failed to send message",
			logger.Int64("chat_id", m.ChatID),
			logger.Error(err))
	}
	return id
}

// edit updates an earlier progress message in place.
func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string) {
	if err := b.d.Chat.Edit(ctx, chatID, messageID, text); err != nil {
		b.d.Logger.Warn("failed to edit message",
			logger.Int64("chat_id", chatID),
			logger.Int("message_id", messageID),
			logger.Error(err))
	}
}

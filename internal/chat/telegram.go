package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/utils"
)

// DefaultTelegramURL is the production Bot API endpoint.
const DefaultTelegramURL = "https://api.telegram.org"

const longPollSeconds = 50

// TelegramClient implements Client against the Telegram Bot API over
// plain HTTPS: long-polled getUpdates plus per-call method requests.
type TelegramClient struct {
	baseURL  string
	token    string
	api      *http.Client // method calls
	poll     *http.Client // long polling, needs headroom over the poll window
	transfer *http.Client // attachment downloads
	logger   logger.Logger
}

// NewTelegramClient creates a Bot API client. transferTimeout bounds
// attachment downloads; method calls use a fixed 30s timeout.
func NewTelegramClient(baseURL, token string, transferTimeout time.Duration, log logger.Logger) *TelegramClient {
	if baseURL == "" {
		baseURL = DefaultTelegramURL
	}
	return &TelegramClient{
		baseURL:  baseURL,
		token:    token,
		api:      &http.Client{Timeout: 30 * time.Second},
		poll:     &http.Client{Timeout: (longPollSeconds + 10) * time.Second},
		transfer: &http.Client{Timeout: transferTimeout},
		logger:   log,
	}
}

// Bot API wire types, limited to the fields the bot reads.

type tgUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type tgDocument struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileName     string `json:"file_name"`
	MIMEType     string `json:"mime_type"`
	FileSize     int64  `json:"file_size"`
}

type tgChat struct {
	ID int64 `json:"id"`
}

type tgMessage struct {
	MessageID int         `json:"message_id"`
	From      *tgUser     `json:"from"`
	Chat      tgChat      `json:"chat"`
	Text      string      `json:"text"`
	Document  *tgDocument `json:"document"`
	ReplyTo   *tgMessage  `json:"reply_to_message"`
}

type tgUpdate struct {
	UpdateID int64      `json:"update_id"`
	Message  *tgMessage `json:"message"`
}

type tgResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (m *tgMessage) toMessage() *Message {
	if m == nil {
		return nil
	}
	msg := &Message{
		ID:      m.MessageID,
		ChatID:  m.Chat.ID,
		Text:    m.Text,
		ReplyTo: m.ReplyTo.toMessage(),
	}
	if m.From != nil {
		msg.From = User{
			ID:        m.From.ID,
			FirstName: m.From.FirstName,
			Username:  m.From.Username,
		}
	}
	if m.Document != nil {
		msg.Document = &Document{
			FileID:       m.Document.FileID,
			FileUniqueID: m.Document.FileUniqueID,
			FileName:     m.Document.FileName,
			MIMEType:     m.Document.MIMEType,
			FileSize:     m.Document.FileSize,
		}
	}
	return msg
}

// Updates long-polls getUpdates and delivers message updates until ctx is
// done. Transient polling errors back off and retry; the channel closes
// only on ctx cancellation.
func (c *TelegramClient) Updates(ctx context.Context) <-chan Message {
	out := make(chan Message)

	go func() {
		defer close(out)
		var offset int64

		for {
			if ctx.Err() != nil {
				return
			}

			updates, err := c.getUpdates(ctx, offset)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Warn("getUpdates failed, backing off",
					logger.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(3 * time.Second):
				}
				continue
			}

			for _, u := range updates {
				if u.UpdateID >= offset {
					offset = u.UpdateID + 1
				}
				msg := u.Message.toMessage()
				if msg == nil {
					continue
				}
				select {
				case out <- *msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (c *TelegramClient) getUpdates(ctx context.Context, offset int64) ([]tgUpdate, error) {
	raw, err := c.call(ctx, c.poll, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         longPollSeconds,
		"allowed_updates": []string{"message"},
	})
	if err != nil {
		return nil, err
	}

	var updates []tgUpdate
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

// Send posts a message and returns the platform message id.
func (c *TelegramClient) Send(ctx context.Context, chatID int64, text string) (int, error) {
	raw, err := c.call(ctx, c.api, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return 0, err
	}

	var msg tgMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, fmt.Errorf("failed to parse sent message: %w", err)
	}
	return msg.MessageID, nil
}

// Edit replaces the text of an earlier message.
func (c *TelegramClient) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := c.call(ctx, c.api, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	})
	return err
}

// OpenFile resolves fileID to a storage path and opens a streaming
// download over it. The caller owns the returned body.
func (c *TelegramClient) OpenFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	raw, err := c.call(ctx, c.api, "getFile", map[string]any{
		"file_id": fileID,
	})
	if err != nil {
		return nil, err
	}

	var file struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse file info: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("platform returned no file path for %s", fileID)
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.transfer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attachment download failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		utils.Close(resp.Body)
		return nil, fmt.Errorf("attachment download failed: HTTP %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// call performs one Bot API method request and returns the raw result.
func (c *TelegramClient) call(ctx context.Context, client *http.Client, method string, params map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", method, err)
	}
	defer utils.Close(resp.Body)

	var parsed tgResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("%s rejected: %s", method, parsed.Description)
	}

	return parsed.Result, nil
}

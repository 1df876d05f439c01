package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "hubstaff-bot-backend/internal/common/errors"
)

const defaultBaseURL = "https://api.telegram.org"

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Response представляет ответ от Telegram API
type Response struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{
			// Long-poll requests hold the connection open for the poll
			// timeout; leave headroom above it.
			Timeout: 50 * time.Second,
		},
		baseURL: defaultBaseURL,
		token:   token,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

// GetUpdates long-polls the Bot API for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	params := url.Values{
		"offset":  {strconv.FormatInt(offset, 10)},
		"timeout": {strconv.Itoa(timeoutSec)},
	}

	var updates []Update
	if err := c.makeRequest(ctx, "GET", "getUpdates", params, &updates); err != nil {
		return nil, fmt.Errorf("failed to get updates: %w", err)
	}
	return updates, nil
}

// SendMessage sends a new message to the chat, optionally with a keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup ReplyMarkup) error {
	return c.sendMessage(ctx, chatID, 0, text, markup)
}

// ReplyMessage sends a message replying to an existing one in the chat.
func (c *Client) ReplyMessage(ctx context.Context, chatID, replyTo int64, text string, markup ReplyMarkup) error {
	return c.sendMessage(ctx, chatID, replyTo, text, markup)
}

func (c *Client) sendMessage(ctx context.Context, chatID, replyTo int64, text string, markup ReplyMarkup) error {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	}
	if replyTo != 0 {
		params.Set("reply_to_message_id", strconv.FormatInt(replyTo, 10))
	}
	if markup != nil {
		data, err := json.Marshal(markup)
		if err != nil {
			return fmt.Errorf("failed to marshal reply markup: %w", err)
		}
		params.Set("reply_markup", string(data))
	}

	if err := c.makeRequest(ctx, "POST", "sendMessage", params, nil); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// AnswerCallbackQuery acknowledges a button press with a short notification.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	params := url.Values{
		"callback_query_id": {callbackID},
	}
	if text != "" {
		params.Set("text", text)
	}

	if err := c.makeRequest(ctx, "POST", "answerCallbackQuery", params, nil); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

func (c *Client) makeRequest(ctx context.Context, method, apiMethod string, data url.Values, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, apiMethod)

	var req *http.Request
	var err error

	if method == "POST" {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(data.Encode()))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		if len(data) > 0 {
			endpoint = fmt.Sprintf("%s?%s", endpoint, data.Encode())
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTelegramAPI, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !envelope.Ok {
		return apperrors.New(apperrors.ErrCodeTelegramAPI,
			fmt.Sprintf("telegram API error: %s", envelope.Description))
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to parse result: %w", err)
		}
	}

	return nil
}

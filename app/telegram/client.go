package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"bot/app/config"
)

// Client is a thin JSON client for the Telegram Bot API.
type Client struct {
	Config     config.Telegram
	HttpClient *http.Client
}

func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]*Update, error) {
	var updates []*Update
	err := c.call(ctx, "getUpdates", &getUpdatesRequest{
		Offset:  offset,
		Timeout: int(timeout / time.Second),
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) error {
	return c.call(ctx, "sendMessage", &sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	}, nil)
}

func (c *Client) SetMyCommands(ctx context.Context, commands []*BotCommand) error {
	return c.call(ctx, "setMyCommands", &setMyCommandsRequest{Commands: commands}, nil)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	return c.call(ctx, "answerCallbackQuery", &answerCallbackQueryRequest{
		CallbackQueryID: callbackQueryID,
	}, nil)
}

func (c *Client) call(ctx context.Context, method string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal a request body")
	}

	url := c.Config.ApiUrl + "/bot" + c.Config.Token + "/" + method
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create a post request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to perform a request to the telegram api: %s", method)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read a response body from the telegram api")
	}

	apiResp := new(apiResponse)
	if err = json.Unmarshal(respBody, apiResp); err != nil {
		return errors.Wrap(err, "failed to unmarshal a response from the telegram api")
	}
	if !apiResp.OK {
		return errors.Errorf("telegram api error on %s: %s", method, apiResp.Description)
	}

	if result != nil {
		if err = json.Unmarshal(apiResp.Result, result); err != nil {
			return errors.Wrap(err, "failed to unmarshal a result from the telegram api")
		}
	}
	return nil
}

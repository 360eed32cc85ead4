package line

import (
	"fmt"
	"io"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/config"
)

// ErrInvalidSignature 签名校验失败（透出给 webhook handler 转 400）
var ErrInvalidSignature = linebot.ErrInvalidSignature

// Client LINE Messaging API 封装
// 仅暴露本系统用到的窄接口：解析 webhook、回覆、推送、下载消息内容
type Client struct {
	bot    *linebot.Client
	logger *zap.Logger
}

// NewClient 创建 LINE 客户端
func NewClient(cfg *config.LineConfig, logger *zap.Logger) (*Client, error) {
	bot, err := linebot.New(cfg.ChannelSecret, cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("初始化 LINE 客户端失败: %w", err)
	}
	return &Client{bot: bot, logger: logger}, nil
}

// ParseRequest 解析 webhook 请求并校验签名
func (c *Client) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return c.bot.ParseRequest(r)
}

// ReplyText 用 reply token 回覆单条文字消息
func (c *Client) ReplyText(replyToken, text string) error {
	if _, err := c.bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).Do(); err != nil {
		return fmt.Errorf("回覆消息失败: %w", err)
	}
	return nil
}

// PushText 主动推送单条文字消息
func (c *Client) PushText(userID, text string) error {
	if _, err := c.bot.PushMessage(userID, linebot.NewTextMessage(text)).Do(); err != nil {
		return fmt.Errorf("推送消息失败: %w", err)
	}
	return nil
}

// GetMessageContent 下载消息二进制内容（图片 / 音档）
func (c *Client) GetMessageContent(messageID string) ([]byte, error) {
	resp, err := c.bot.GetMessageContent(messageID).Do()
	if err != nil {
		return nil, fmt.Errorf("下载消息内容失败: %w", err)
	}
	defer resp.Content.Close()

	data, err := io.ReadAll(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("读取消息内容失败: %w", err)
	}
	return data, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/rigchat/internal/model"
)

// Chat endpoint paths.
const (
	PathHistory = "/api/v1/chat/history"
	PathSend    = "/api/v1/chat/send"
	PathClear   = "/api/v1/chat/clear"
)

// DefaultHistoryLimit is the page size used when none is given.
const DefaultHistoryLimit = 50

// HistoryParams selects a page of chat history.
type HistoryParams struct {
	Limit  int
	Offset int
}

func (p HistoryParams) values() url.Values {
	v := url.Values{}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	v.Set("limit", strconv.Itoa(limit))
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	return v
}

// History is a page of chat history.
type History struct {
	Messages []model.Message `json:"messages"`
	Total    int             `json:"total,omitempty"`
}

// SendRequest is the payload of a send call.
type SendRequest struct {
	Message     string  `json:"message"`
	DocumentIDs []int64 `json:"document_ids"`
}

// NewSendRequest builds the payload for draft.
func NewSendRequest(draft model.Draft) SendRequest {
	return SendRequest{
		Message:     draft.Text,
		DocumentIDs: draft.DocumentIDs(),
	}
}

// SendResult is the server answer to a send call.
type SendResult struct {
	UserMessage *model.Message `json:"user_message"`
	BotResponse *model.Message `json:"bot_response"`
}

// Complete reports whether both halves of the exchange are present.
func (r *SendResult) Complete() bool {
	return r != nil && r.UserMessage != nil && r.BotResponse != nil
}

// History fetches a page of chat history.
func (c *Client) History(ctx context.Context, params HistoryParams) (*History, error) {
	var page History
	err := c.do(ctx, request{
		op:     "chat.history",
		method: http.MethodGet,
		path:   PathHistory,
		query:  params.values(),
	}, &page)
	if err != nil {
		return nil, err
	}
	if page.Messages == nil {
		page.Messages = []model.Message{}
	}
	return &page, nil
}

// Send posts a user message and returns the stored user message and the
// bot answer.
func (c *Client) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if req.DocumentIDs == nil {
		req.DocumentIDs = []int64{}
	}
	var result SendResult
	err := c.do(ctx, request{
		op:     "chat.send",
		method: http.MethodPost,
		path:   PathSend,
		body:   req,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Clear deletes the chat history on the server.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, request{
		op:     "chat.clear",
		method: http.MethodPost,
		path:   PathClear,
	}, nil)
}

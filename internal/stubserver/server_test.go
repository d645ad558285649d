// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stubserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/model"
)

func newClient(t *testing.T, srv *Server) (*api.Client, *string) {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	token := new(string)
	client := api.NewClient(ts.URL).
		WithMaxRetries(0).
		WithTokenSource(api.TokenFunc(func() string { return *token }))
	return client, token
}

func TestLoginAndSend(t *testing.T) {
	srv := New(Options{})
	client, token := newClient(t, srv)
	ctx := context.Background()

	_, err := client.History(ctx, api.HistoryParams{})
	require.True(t, errors.Is(err, api.ErrUnauthorized))

	_, err = client.Login(ctx, DefaultEmail, "wrong")
	require.True(t, errors.Is(err, api.ErrValidation))
	assert.Equal(t, api.AuthValidation, api.ClassifyAuth(err))

	user, err := client.Login(ctx, DefaultEmail, DefaultPassword)
	require.NoError(t, err)
	*token = user.AccessToken

	result, err := client.Send(ctx, api.SendRequest{Message: "hi", DocumentIDs: []int64{1}})
	require.NoError(t, err)
	require.True(t, result.Complete())
	assert.Equal(t, model.MessageID("1"), result.UserMessage.ID)
	assert.Equal(t, model.MessageID("2"), result.BotResponse.ID)
	assert.Equal(t, []model.DocumentRef{"Employee Handbook"}, result.UserMessage.Documents)

	page, err := client.History(ctx, api.HistoryParams{})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	replies := model.RepliesOf(page.Messages[0])
	require.Len(t, replies, 1)
	assert.Equal(t, model.MessageID("2"), replies[0].ID)

	require.NoError(t, client.Clear(ctx))
	page, err = client.History(ctx, api.HistoryParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Messages)

	require.NoError(t, client.Logout(ctx))
	_, err = client.CurrentUser(ctx)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
}

func TestSend_Validation(t *testing.T) {
	srv := New(Options{})
	client, token := newClient(t, srv)
	*token = srv.IssueToken()

	_, err := client.Send(context.Background(), api.SendRequest{Message: "  "})
	require.Error(t, err)
	assert.Equal(t, "The message field is required.", api.ServerMessage(err))

	_, err = client.Send(context.Background(), api.SendRequest{Message: "x", DocumentIDs: []int64{99}})
	assert.True(t, errors.Is(err, api.ErrForbidden))
}

func TestFailNext(t *testing.T) {
	srv := New(Options{})
	client, token := newClient(t, srv)
	*token = srv.IssueToken()

	srv.FailNext(api.PathSend, http.StatusInternalServerError)

	_, err := client.Send(context.Background(), api.SendRequest{Message: "x"})
	assert.True(t, errors.Is(err, api.ErrServer))

	_, err = client.Send(context.Background(), api.SendRequest{Message: "x"})
	assert.NoError(t, err)
}

func TestHistory_LimitOffset(t *testing.T) {
	srv := New(Options{})
	client, token := newClient(t, srv)
	*token = srv.IssueToken()
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c", "d"} {
		_, err := client.Send(ctx, api.SendRequest{Message: text})
		require.NoError(t, err)
	}

	page, err := client.History(ctx, api.HistoryParams{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "b", page.Messages[0].Text)
	assert.Equal(t, "c", page.Messages[1].Text)
	assert.Equal(t, 4, page.Total)
}

func TestDocuments_Paging(t *testing.T) {
	srv := New(Options{})
	client, token := newClient(t, srv)
	*token = srv.IssueToken()

	page, err := client.Documents(context.Background(), api.DocumentParams{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, 2, page.LastPage)
	assert.Equal(t, "Onboarding Guide", page.Documents[0].DisplayLabel())
}

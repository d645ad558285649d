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

// PathDocuments lists the documents available for attachment.
const PathDocuments = "/api/v1/documents"

// DefaultDocumentsPerPage is the page size used when none is given.
const DefaultDocumentsPerPage = 15

// DocumentParams selects a page of the document listing.
type DocumentParams struct {
	Page    int
	PerPage int
}

func (p DocumentParams) values() url.Values {
	v := url.Values{}
	page, perPage := p.Page, p.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultDocumentsPerPage
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	return v
}

// DocumentPage is a page of the document listing.
type DocumentPage struct {
	Documents   []model.Document `json:"documents"`
	Total       int              `json:"total"`
	CurrentPage int              `json:"current_page"`
	LastPage    int              `json:"last_page"`
}

// Documents fetches a page of the document listing.
func (c *Client) Documents(ctx context.Context, params DocumentParams) (*DocumentPage, error) {
	var page DocumentPage
	err := c.do(ctx, request{
		op:     "documents.list",
		method: http.MethodGet,
		path:   PathDocuments,
		query:  params.values(),
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

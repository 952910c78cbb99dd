// Package backend exposes the platform REST API as typed endpoint functions.
// List endpoints return listing.Page values so they plug straight into a
// listing.Controller; mutations return the backend's {status, message} ack.
package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/listing"
)

// Ack is the minimal answer of every mutation endpoint.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// envelope wraps single-object answers.
type envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// listEnvelope is the shape of every list answer.
type listEnvelope[T any] struct {
	Data       []T             `json:"data"`
	Pagination *wirePagination `json:"pagination"`
}

type wirePagination struct {
	TotalCount *int `json:"totalCount"`
	TotalPages int  `json:"totalPages"`
	PageNumber int  `json:"pageNumber"`
	PageSize   int  `json:"pageSize"`
}

// API is the typed view of the backend for one admin.
type API struct {
	c *apiclient.Client
}

// New wraps a client. The client carries the admin's bearer token.
func New(c *apiclient.Client) *API {
	return &API{c: c}
}

// Client returns the underlying client.
func (a *API) Client() *apiclient.Client { return a.c }

// listParams encodes the common list parameters. pageKey is "page" or
// "page_number" depending on the endpoint.
func listParams[F comparable](pageKey string, q listing.Query[F]) url.Values {
	v := url.Values{}
	v.Set(pageKey, strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setID(v url.Values, key string, id int64) {
	if id > 0 {
		v.Set(key, strconv.FormatInt(id, 10))
	}
}

func list[T any](ctx context.Context, c *apiclient.Client, path string, params url.Values) (listing.Page[T], error) {
	var env listEnvelope[T]
	if err := c.Get(ctx, path, params, &env); err != nil {
		return listing.Page[T]{}, err
	}
	page := listing.Page[T]{Items: env.Data}
	if env.Pagination != nil {
		page.Meta = &listing.Meta{
			TotalCount: env.Pagination.TotalCount,
			TotalPages: env.Pagination.TotalPages,
			PageNumber: env.Pagination.PageNumber,
			PageSize:   env.Pagination.PageSize,
		}
	}
	return page, nil
}

func get[T any](ctx context.Context, c *apiclient.Client, path string, params url.Values) (T, error) {
	var env envelope[T]
	if err := c.Get(ctx, path, params, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

func entityPath(base string, id int64, suffix ...string) string {
	p := fmt.Sprintf("%s/%d", base, id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

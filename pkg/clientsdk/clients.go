package clientsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func clientPath(id int64) string {
	return "/clients/" + strconv.FormatInt(id, 10)
}

// ListClients returns up to 100 clients, newest first. A non-empty search
// keeps only names containing it, ignoring case.
func (c *SDKClient) ListClients(ctx context.Context, search string) ([]Client, error) {
	path := "/clients"
	if s := strings.TrimSpace(search); s != "" {
		path += "?" + url.Values{"search": {s}}.Encode()
	}

	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	clients := make([]Client, 0)
	if err := decodeJSON(resp, &clients, http.StatusOK); err != nil {
		return nil, err
	}
	return clients, nil
}

func (c *SDKClient) GetClient(ctx context.Context, id int64) (*Client, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, clientPath(id), nil)
	if err != nil {
		return nil, err
	}

	var client Client
	if err := decodeJSON(resp, &client, http.StatusOK); err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *SDKClient) CreateClient(ctx context.Context, req CreateClientRequest) (*Client, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/clients", req)
	if err != nil {
		return nil, err
	}

	var client Client
	if err := decodeJSON(resp, &client, http.StatusCreated); err != nil {
		return nil, err
	}
	return &client, nil
}

// UpdateClient changes only the fields set in req.
func (c *SDKClient) UpdateClient(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	resp, err := c.doJSON(ctx, http.MethodPut, clientPath(id), req)
	if err != nil {
		return nil, err
	}

	var client Client
	if err := decodeJSON(resp, &client, http.StatusOK); err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *SDKClient) DeleteClient(ctx context.Context, id int64) error {
	resp, err := c.doJSON(ctx, http.MethodDelete, clientPath(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

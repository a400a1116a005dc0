package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) AdminProducts(ctx context.Context) ([]Product, error) {
	var resp struct {
		Products []Product `json:"products"`
	}
	err := c.do(ctx, call{
		method: http.MethodGet,
		url:    strings.TrimRight(c.ep.Products, "/") + "/all_products",
		out:    &resp,
	})
	if err != nil {
		return nil, err
	}
	if resp.Products == nil {
		resp.Products = []Product{}
	}
	return resp.Products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	return c.do(ctx, call{method: http.MethodPost, url: c.ep.Products, body: in})
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) error {
	return c.do(ctx, call{method: http.MethodPut, url: c.productURL(id), body: in})
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	body := map[string]string{}
	if c.sess != nil && c.sess.OrgCode != "" {
		body["orgCode"] = c.sess.OrgCode
	}
	return c.do(ctx, call{method: http.MethodDelete, url: c.productURL(id), body: body})
}

func (c *Client) productURL(id string) string {
	return strings.TrimRight(c.ep.Products, "/") + "/" + url.PathEscape(id)
}

func (c *Client) AllUsers(ctx context.Context) ([]User, error) {
	return c.users(ctx, c.ep.AllUsers)
}

func (c *Client) PendingUsers(ctx context.Context) ([]User, error) {
	return c.users(ctx, c.ep.PendingUsers)
}

func (c *Client) users(ctx context.Context, endpoint string) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, call{method: http.MethodGet, url: endpoint, out: &resp}); err != nil {
		return nil, err
	}
	if resp.Users == nil {
		resp.Users = []User{}
	}
	return resp.Users, nil
}

// ApproveUser admits a pending employee and returns the backend's message.
func (c *Client) ApproveUser(ctx context.Context, email string) (string, error) {
	return c.decide(ctx, c.ep.ApproveUser, email)
}

func (c *Client) RejectUser(ctx context.Context, email string) (string, error) {
	return c.decide(ctx, c.ep.RejectUser, email)
}

func (c *Client) decide(ctx context.Context, endpoint, email string) (string, error) {
	var resp messageResp
	err := c.do(ctx, call{
		method: http.MethodPatch,
		url:    endpoint,
		body:   map[string]string{"email": email},
		out:    &resp,
	})
	return resp.Message, err
}

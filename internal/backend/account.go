package backend

import (
	"context"
	"net/http"
)

func (c *Client) SignIn(ctx context.Context, req SignInRequest) (SignInResponse, error) {
	var resp SignInResponse
	err := c.do(ctx, call{method: http.MethodPost, url: c.ep.SignIn, body: req, out: &resp, public: true})
	return resp, err
}

func (c *Client) SignUpAdmin(ctx context.Context, req AdminSignUp) (string, error) {
	var resp messageResp
	err := c.do(ctx, call{method: http.MethodPost, url: c.ep.SignUpAdmin, body: req, out: &resp, public: true})
	return resp.Message, err
}

func (c *Client) SignUpEmployee(ctx context.Context, req EmployeeSignUp) (string, error) {
	var resp messageResp
	err := c.do(ctx, call{method: http.MethodPost, url: c.ep.SignUpEmployee, body: req, out: &resp, public: true})
	return resp.Message, err
}

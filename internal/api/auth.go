package api

import (
	"net/http"
	"strings"
)

// AuthFunc applies credentials to an outgoing request.
type AuthFunc func(req *http.Request)

// NewBearerAuth authenticates with a user token sent as a bearer token.
func NewBearerAuth(token string) AuthFunc {
	token = strings.TrimSpace(token)
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// NewTokenAuth authenticates with a user token passed as the basic-auth user
// name and an empty password, which every server version accepts.
func NewTokenAuth(token string) AuthFunc {
	token = strings.TrimSpace(token)
	return func(req *http.Request) {
		req.SetBasicAuth(token, "")
	}
}

// NewBasicAuth authenticates with a login and password.
func NewBasicAuth(login, password string) AuthFunc {
	login = strings.TrimSpace(login)
	password = strings.TrimSpace(password)
	return func(req *http.Request) {
		req.SetBasicAuth(login, password)
	}
}

// Anonymous sends no credentials.
func Anonymous(*http.Request) {}

// ResolveAuth picks an AuthFunc from the configured credentials: a token
// wins over a login and password, and with neither requests are anonymous.
// A token with the "bearer:" prefix is sent as a bearer token.
func ResolveAuth(token, login, password string) (auth AuthFunc, method string) {
	switch {
	case strings.HasPrefix(token, "bearer:"):
		return NewBearerAuth(strings.TrimPrefix(token, "bearer:")), "Bearer"
	case token != "":
		return NewTokenAuth(token), "Token"
	case login != "" && password != "":
		return NewBasicAuth(login, password), "Basic"
	default:
		return Anonymous, "Anonymous"
	}
}

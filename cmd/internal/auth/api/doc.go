// Package api exposes the auth lifecycle over HTTP: register, login,
// refresh, logout and the authenticated /me endpoint. Refresh tokens
// travel in an HttpOnly cookie guarded by a double-submit CSRF token;
// access tokens travel in the Authorization header.
package api

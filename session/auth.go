package session

import (
	"context"

	"github.com/shopfront/storefront-go/core"
	"github.com/shopfront/storefront-go/transport"
)

// Auth performs the credential exchange operations. Login and register
// are the only calls that go out unauthenticated; both install a new
// session on success.
type Auth struct {
	pipeline *transport.Pipeline
	manager  *Manager
	logger   core.Logger
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the flat token+profile document the backend returns
// on login and register.
type authResponse struct {
	Token string `json:"token"`
	core.User
}

// NewAuth creates the auth service.
func NewAuth(pipeline *transport.Pipeline, manager *Manager, logger core.Logger) *Auth {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Auth{pipeline: pipeline, manager: manager, logger: logger}
}

// Login exchanges credentials for a session. Empty credentials are
// rejected locally without a round trip.
func (a *Auth) Login(ctx context.Context, email, password string) (*core.User, error) {
	if email == "" || password == "" {
		return nil, &core.APIError{
			Op:      "auth.Login",
			Kind:    core.KindValidation,
			Message: "email and password are required",
		}
	}

	var resp authResponse
	if err := a.pipeline.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}

	user := resp.User
	a.manager.Establish(ctx, resp.Token, &user)

	a.logger.Info("Login succeeded", map[string]interface{}{
		"operation": "auth_login",
		"user_id":   user.ID,
	})
	return a.manager.CurrentUser(), nil
}

// Register creates an account and installs the returned session.
func (a *Auth) Register(ctx context.Context, req RegisterRequest) (*core.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, &core.APIError{
			Op:      "auth.Register",
			Kind:    core.KindValidation,
			Message: "email and password are required",
		}
	}

	var resp authResponse
	if err := a.pipeline.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}

	user := resp.User
	a.manager.Establish(ctx, resp.Token, &user)

	a.logger.Info("Registration succeeded", map[string]interface{}{
		"operation": "auth_register",
		"user_id":   user.ID,
	})
	return a.manager.CurrentUser(), nil
}

// Logout ends the session voluntarily. Invalidation hooks tear down
// the session-owned cart mirror.
func (a *Auth) Logout(ctx context.Context) {
	a.manager.Invalidate(ctx)
}

// Profile fetches the current user's profile through the authenticated
// pipeline.
func (a *Auth) Profile(ctx context.Context) (*core.User, error) {
	var user core.User
	if err := a.pipeline.Get(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateProfile changes the user's name fields and refreshes the
// identity held by the session manager.
func (a *Auth) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*core.User, error) {
	var user core.User
	if err := a.pipeline.Put(ctx, "/users/me", req, &user); err != nil {
		return nil, err
	}

	a.manager.mu.Lock()
	if a.manager.user != nil {
		u := user
		a.manager.user = &u
	}
	a.manager.mu.Unlock()

	return &user, nil
}

package functions

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"tasker/internal/config"
)

// newHTTPClient returns an HTTP client that authenticates requests according
// to cfg.Auth.Mode.
func newHTTPClient(ctx context.Context, cfg config.Backend) (*http.Client, error) {
	ts, err := tokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if ts == nil {
		return &http.Client{}, nil
	}
	return oauth2.NewClient(ctx, ts), nil
}

// tokenSource returns nil for unauthenticated mode.
func tokenSource(ctx context.Context, cfg config.Backend) (oauth2.TokenSource, error) {
	switch cfg.Auth.Mode {
	case "", config.AuthNone:
		return nil, nil

	case config.AuthBearer:
		if cfg.Auth.Token == "" {
			return nil, fmt.Errorf("auth token is empty")
		}
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Auth.Token, TokenType: "Bearer"}), nil

	case config.AuthIDToken:
		audience := cfg.Auth.Audience
		if audience == "" {
			audience = cfg.BaseURL
		}
		var opts []option.ClientOption
		if cfg.Auth.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Auth.CredentialsFile))
		}
		ts, err := idtoken.NewTokenSource(ctx, audience, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create id token source: %w", err)
		}
		return oauth2.ReuseTokenSource(nil, ts), nil

	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.Auth.Mode)
	}
}

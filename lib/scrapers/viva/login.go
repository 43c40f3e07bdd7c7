package viva

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// LoginOptions describes the interactive login: a headful browser is
// opened on Url and Confirm blocks until the operator reports that the
// login is complete. Returning an error from Confirm aborts the login
// before any cookies are read.
type LoginOptions struct {
	Url     string
	Confirm func(ctx context.Context) error
}

// ObtainCookies drives the interactive login and returns the session
// cookies. The browser is closed on every path, success or not. The
// cookie set is returned as-is, whether it actually authenticates is
// only discovered by the first portal request.
func ObtainCookies(ctx context.Context, opts LoginOptions) ([]*http.Cookie, error) {
	if opts.Url == "" {
		return nil, fmt.Errorf("login url is empty")
	}

	// Leakless(false) to avoid tripping antivirus quarantine on the
	// operator's machine
	controlUrl, err := launcher.New().
		Headless(false).
		Leakless(false).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlUrl).Context(ctx)
	err = browser.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		err := browser.Close()
		if err != nil {
			slog.Warn("failed to close login browser", "err", err)
		}
	}()

	_, err = browser.Page(proto.TargetCreateTarget{URL: opts.Url})
	if err != nil {
		return nil, fmt.Errorf("failed to open login page: %w", err)
	}

	if opts.Confirm != nil {
		err = opts.Confirm(ctx)
		if err != nil {
			return nil, err
		}
	}

	harvested, err := browser.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(harvested))
	for _, c := range harvested {
		cookies = append(cookies, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	return cookies, nil
}

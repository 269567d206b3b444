// Package ga lists accounts, web properties and profiles from the
// Google Analytics Management API.
package ga

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	analytics "google.golang.org/api/analytics/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/adrianmross/ga-context/pkg/selector"
)

// MaxResults caps a single list page.
const MaxResults = 1000

// Client fetches management lists for the selector.
type Client struct {
	svc *analytics.Service
}

// NewClient builds a read-only analytics client.
// credentialsFile may point to a service account or authorized user JSON;
// when empty, application default credentials are used unless opts supply auth.
func NewClient(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*Client, error) {
	switch {
	case credentialsFile != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, analytics.AnalyticsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	case len(opts) == 0:
		creds, err := google.FindDefaultCredentials(ctx, analytics.AnalyticsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("default credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	svc, err := analytics.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("analytics service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Fetch executes one list request. Failures are returned as the error payload.
func (c *Client) Fetch(ctx context.Context, req selector.Request) selector.ListResult {
	var (
		items []selector.Item
		err   error
	)
	switch req.Level {
	case selector.LevelAccount:
		items, err = c.accounts(ctx)
	case selector.LevelProperty:
		items, err = c.properties(ctx, req.AccountID)
	case selector.LevelProfile:
		items, err = c.profiles(ctx, req.AccountID, req.PropertyID)
	default:
		err = fmt.Errorf("unknown level %s", req.Level)
	}
	if err != nil {
		return selector.ListResult{Kind: req.Level, Err: &selector.APIError{Message: errorMessage(err)}}
	}
	return selector.ListResult{Kind: req.Level, Items: items}
}

func (c *Client) accounts(ctx context.Context) ([]selector.Item, error) {
	resp, err := c.svc.Management.Accounts.List().MaxResults(MaxResults).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	items := make([]selector.Item, 0, len(resp.Items))
	for _, a := range resp.Items {
		items = append(items, selector.Item{ID: a.Id, Name: a.Name})
	}
	return items, nil
}

func (c *Client) properties(ctx context.Context, accountID string) ([]selector.Item, error) {
	resp, err := c.svc.Management.Webproperties.List(accountID).MaxResults(MaxResults).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	items := make([]selector.Item, 0, len(resp.Items))
	for _, p := range resp.Items {
		items = append(items, selector.Item{ID: p.Id, Name: p.Name})
	}
	return items, nil
}

func (c *Client) profiles(ctx context.Context, accountID, propertyID string) ([]selector.Item, error) {
	resp, err := c.svc.Management.Profiles.List(accountID, propertyID).MaxResults(MaxResults).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	items := make([]selector.Item, 0, len(resp.Items))
	for _, p := range resp.Items {
		items = append(items, selector.Item{ID: p.Id, Name: p.Name})
	}
	return items, nil
}

// errorMessage prefers the API's own message over the wrapped transport text.
func errorMessage(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	return err.Error()
}

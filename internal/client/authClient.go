package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/sony/gobreaker/v2"

	"furnit-storefront/internal/config"
)

const usersPerPage = 1000

var (
	ErrUserNotFound        = errors.New("auth user not found")
	ErrAuthBackendDisabled = errors.New("auth backend not configured")
)

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthDirectory answers whether an account exists in the managed auth backend.
type AuthDirectory interface {
	FindUserByEmail(ctx context.Context, email string) (*AuthUser, error)
}

type supabaseAdminClient struct {
	httpClient     *http.Client
	baseURL        string
	serviceRoleKey string
	breaker        *gobreaker.CircuitBreaker[*AuthUser]
}

func NewAuthDirectory(cfg *config.AuthBackend, logger *log.Logger) AuthDirectory {
	c := &supabaseAdminClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		serviceRoleKey: cfg.ServiceRoleKey,
	}

	c.breaker = gobreaker.NewCircuitBreaker[*AuthUser](gobreaker.Settings{
		Name:        "auth-backend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// an unknown email is an answer, not a backend failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUserNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("circuit %s: %s -> %s", name, from, to)
		},
	})

	return c
}

func (c *supabaseAdminClient) FindUserByEmail(ctx context.Context, email string) (*AuthUser, error) {
	if c.baseURL == "" || c.serviceRoleKey == "" {
		return nil, ErrAuthBackendDisabled
	}

	return c.breaker.Execute(func() (*AuthUser, error) {
		return c.findUserByEmail(ctx, email)
	})
}

func (c *supabaseAdminClient) findUserByEmail(ctx context.Context, email string) (*AuthUser, error) {
	for page := 1; ; page++ {
		users, err := c.listUsers(ctx, page)
		if err != nil {
			return nil, err
		}

		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return u, nil
			}
		}

		if len(users) < usersPerPage {
			return nil, ErrUserNotFound
		}
	}
}

func (c *supabaseAdminClient) listUsers(ctx context.Context, page int) ([]*AuthUser, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("per_page", fmt.Sprint(usersPerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/auth/v1/admin/users?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("apikey", c.serviceRoleKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceRoleKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth backend list users: status %d", resp.StatusCode)
	}

	var res struct {
		Users []*AuthUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode list users response: %w", err)
	}

	return res.Users, nil
}

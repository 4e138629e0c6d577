package mailchimp

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/telelbirds/internal/config"
)

// ErrMissingDataCenter is returned when the API key carries no "-<dc>" suffix
// and no base URL was configured.
var ErrMissingDataCenter = errors.New("mailchimp api key has no data center suffix")

// Subscriber adds addresses to a mailing list.
type Subscriber interface {
	Subscribe(ctx context.Context, listID, email string) error
}

// APIClient talks to the Marketing API v3.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient derives the API host from the key's data center suffix unless
// cfg.BaseURL overrides it.
func NewClient(cfg config.MailchimpConfig) (*APIClient, error) {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		idx := strings.LastIndex(cfg.APIKey, "-")
		if idx < 0 || idx == len(cfg.APIKey)-1 {
			return nil, ErrMissingDataCenter
		}
		base = fmt.Sprintf("https://%s.api.mailchimp.com/3.0", cfg.APIKey[idx+1:])
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetBasicAuth("telelbirds", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &APIClient{httpClient: restyClient}, nil
}

type memberRequest struct {
	EmailAddress string `json:"email_address"`
	StatusIfNew  string `json:"status_if_new"`
}

type apiError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Subscribe upserts the member. New addresses start as "pending" so the
// provider sends the opt-in confirmation; existing members are updated.
func (c *APIClient) Subscribe(ctx context.Context, listID, email string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"list":   listID,
			"member": SubscriberHash(email),
		}).
		SetBody(memberRequest{EmailAddress: email, StatusIfNew: "pending"}).
		SetError(apiErr).
		Put("/lists/{list}/members/{member}")
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", email, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("mailchimp api error: status=%d, title=%s, detail=%s", resp.StatusCode(), apiErr.Title, apiErr.Detail)
	}
	return nil
}

// SubscriberHash is the member id: the MD5 of the lower-cased address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

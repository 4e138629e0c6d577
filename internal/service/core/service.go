package core

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/config"
	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/pkg/clients/mailchimp"
	"github.com/mamadbah2/telelbirds/pkg/clients/mailer"
)

const (
	HelpSentMessage   = "Email sent! We'll try to get back to you as soon as possible."
	HelpFailedMessage = "Email not sent. Please try again."
	SubscribeFailed   = "Sorry, an error occurred."
)

var (
	// ErrEmptyEmail is returned when a subscription carries no address.
	ErrEmptyEmail = errors.New("email is required")
	// ErrMailingListDisabled is returned when no list is configured.
	ErrMailingListDisabled = errors.New("mailing list is not configured")
)

// SiteContext is attached to every page payload.
type SiteContext struct {
	SiteName                  string  `json:"site_name"`
	SiteDomain                string  `json:"site_domain"`
	GoogleAnalyticsTrackingID *string `json:"google_analytics_tracking_id"`
	IntercomAppID             *string `json:"intercom_app_id"`
	AddThisPublisherID        *string `json:"addthis_publisher_id"`
}

// HelpRequest is the contact form.
type HelpRequest struct {
	Email   string `json:"email" form:"email" validate:"required,email"`
	Subject string `json:"subject" form:"subject" validate:"required,max=100"`
	Message string `json:"message" form:"message" validate:"required"`
}

// PostLister feeds the sitemap with published posts.
type PostLister interface {
	AllPublic(ctx context.Context) ([]models.Blog, error)
}

// Service implements the site-wide pages.
type Service struct {
	site       config.SiteConfig
	listID     string
	mail       mailer.Sender
	subscriber mailchimp.Subscriber
	posts      PostLister
	logger     *zap.Logger
}

// NewService wires the site pages. mail and subscriber may be nil when the
// integrations are not configured.
func NewService(site config.SiteConfig, listID string, mail mailer.Sender, subscriber mailchimp.Subscriber, posts PostLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{site: site, listID: listID, mail: mail, subscriber: subscriber, posts: posts, logger: logger}
}

func (s *Service) SiteContext() SiteContext {
	return SiteContext{
		SiteName:                  s.site.Name,
		SiteDomain:                s.site.Domain,
		GoogleAnalyticsTrackingID: nullable(s.site.GoogleAnalyticsID),
		IntercomAppID:             nullable(s.site.IntercomAppID),
		AddThisPublisherID:        nullable(s.site.AddThisPublisherID),
	}
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// SendHelp mails the contact form to the support address on behalf of
// username.
func (s *Service) SendHelp(username string, req HelpRequest) error {
	if s.mail == nil {
		return mailer.ErrNotConfigured
	}

	msg := mailer.Message{
		From:    s.site.SupportEmail,
		To:      []string{s.site.SupportEmail},
		Subject: fmt.Sprintf("[Help] %s ", req.Subject),
		Body:    fmt.Sprintf("Sent By: %s (%s)\n\n%s", req.Email, username, req.Message),
	}
	if err := s.mail.Send(msg); err != nil {
		s.logger.Error("help email failed", zap.String("username", username), zap.Error(err))
		return err
	}

	s.logger.Info("help email sent", zap.String("username", username))
	return nil
}

// Subscribe adds the normalised address to the configured list and returns
// the confirmation text.
func (s *Service) Subscribe(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmptyEmail
	}
	if s.subscriber == nil || s.listID == "" {
		s.logger.Error("a mailing list error occurred", zap.Error(ErrMailingListDisabled))
		return "", ErrMailingListDisabled
	}

	if err := s.subscriber.Subscribe(ctx, s.listID, email); err != nil {
		s.logger.Error("a mailing list error occurred", zap.Error(err))
		return "", err
	}

	s.logger.Info("subscribed to mailing list", zap.String("email", email), zap.String("list", s.listID))
	return fmt.Sprintf("%s successfully subscribed to %s!", email, s.listID), nil
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

// StaticPages are the named pages listed in the sitemap, with their paths.
var StaticPages = []struct{ Name, Path string }{
	{"home", "/"},
	{"signup", "/accounts/signup/"},
	{"login", "/accounts/login/"},
}

// Sitemap renders the sitemaps.org document for the static pages and every
// published post.
func (s *Service) Sitemap(ctx context.Context, baseURL string) ([]byte, error) {
	base := strings.TrimSuffix(baseURL, "/")
	doc := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	for _, p := range StaticPages {
		doc.URLs = append(doc.URLs, sitemapURL{Loc: base + p.Path, ChangeFreq: "daily"})
	}

	if s.posts != nil {
		posts, err := s.posts.AllPublic(ctx)
		if err != nil {
			return nil, err
		}
		for i := range posts {
			u := sitemapURL{Loc: base + posts[i].AbsoluteURL()}
			if !posts[i].Modified.IsZero() {
				u.LastMod = posts[i].Modified.UTC().Format("2006-01-02")
			}
			doc.URLs = append(doc.URLs, u)
		}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/config"
	"github.com/techagentng/bookclub/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrGoogleNotConfigured = errors.New("google login is not configured")

// GoogleAuthenticator drives the authorization code flow.
type GoogleAuthenticator interface {
	AuthCodeURL(state string) string
	UserInfo(ctx context.Context, code string) (*models.GoogleUserInfo, error)
}

type GoogleOAuth struct {
	config *oauth2.Config
}

// NewGoogleOAuth returns nil when no client id is configured.
func NewGoogleOAuth(c *config.Config) *GoogleOAuth {
	if c.GoogleClientID == "" {
		return nil
	}
	return &GoogleOAuth{config: &oauth2.Config{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		RedirectURL:  c.GoogleRedirectURL,
		Scopes: []string{
			googleoauth.UserinfoEmailScope,
			googleoauth.UserinfoProfileScope,
		},
		Endpoint: google.Endpoint,
	}}
}

func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// UserInfo exchanges code and reads the account profile with the resulting token.
func (g *GoogleOAuth) UserInfo(ctx context.Context, code string) (*models.GoogleUserInfo, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "exchange code")
	}
	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(g.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, errors.Wrap(err, "userinfo client")
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "fetch userinfo")
	}
	return &models.GoogleUserInfo{
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}, nil
}

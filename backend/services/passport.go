// ABOUTME: Passport client for QR login and account lookup
// ABOUTME: Issues and polls login QR codes and reads the nav endpoint for a cookie's account

package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/markalston/live-lottery/backend/models"
)

// ErrNotLoggedIn means the platform does not accept the cookie
var ErrNotLoggedIn = errors.New("cookie is not logged in")

// PassportClient talks to the passport and account APIs
type PassportClient struct {
	http         *platformHTTP
	passportBase string
	apiBase      string
}

// NewPassportClient creates a passport client. dial may be nil for direct connections.
func NewPassportClient(passportBase, apiBase, userAgent string, dial DialContextFunc) *PassportClient {
	return &PassportClient{
		http: &platformHTTP{
			client:    NewHTTPClient(platformTimeout, dial),
			userAgent: userAgent,
		},
		passportBase: passportBase,
		apiBase:      apiBase,
	}
}

// GenerateQRCode issues a new login QR code.
func (p *PassportClient) GenerateQRCode(ctx context.Context) (*models.QRCode, error) {
	res, err := p.http.getJSON(ctx, p.passportBase+"/x/passport-login/web/qrcode/generate", nil, "")
	if err != nil {
		return nil, fmt.Errorf("requesting QR code: %w", err)
	}
	if err := checkCode(res); err != nil {
		return nil, err
	}

	qr := &models.QRCode{
		URL: res.Get("data.url").String(),
		Key: res.Get("data.qrcode_key").String(),
	}
	if qr.URL == "" || qr.Key == "" {
		return nil, fmt.Errorf("%w: QR code missing url or key", ErrInvalidPlatformResponse)
	}
	return qr, nil
}

// PollQRCode returns the scan state for key, passed through without
// interpreting the inner code.
func (p *PassportClient) PollQRCode(ctx context.Context, key string) (*models.QRStatus, error) {
	if err := ValidateQRKey(key); err != nil {
		return nil, err
	}

	res, err := p.http.getJSON(ctx, p.passportBase+"/x/passport-login/web/qrcode/poll", url.Values{"qrcode_key": {key}}, "")
	if err != nil {
		return nil, fmt.Errorf("polling QR code: %w", err)
	}
	if !res.Get("code").Exists() || !res.Get("data.code").Exists() {
		return nil, fmt.Errorf("%w: QR status missing code", ErrInvalidPlatformResponse)
	}

	data := res.Get("data")
	return &models.QRStatus{
		Code:    int(res.Get("code").Int()),
		Message: res.Get("message").String(),
		Data: models.QRStatusData{
			URL:          data.Get("url").String(),
			RefreshToken: data.Get("refresh_token").String(),
			Timestamp:    data.Get("timestamp").Int(),
			Code:         int(data.Get("code").Int()),
			Message:      data.Get("message").String(),
		},
	}, nil
}

// Nav returns the account the cookie belongs to.
func (p *PassportClient) Nav(ctx context.Context, cookie string) (*models.Account, error) {
	res, err := p.http.getJSON(ctx, p.apiBase+"/x/web-interface/nav", nil, cookie)
	if err != nil {
		return nil, fmt.Errorf("fetching account: %w", err)
	}

	// -101 is the platform's "not logged in"
	if err := checkCode(res); err != nil {
		var pe *PlatformError
		if errors.As(err, &pe) && pe.Code == -101 {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}
	if !res.Get("data.isLogin").Bool() {
		return nil, ErrNotLoggedIn
	}

	account := &models.Account{
		ID:        res.Get("data.mid").Int(),
		Name:      res.Get("data.uname").String(),
		AvatarURL: res.Get("data.face").String(),
	}
	if account.ID <= 0 {
		return nil, fmt.Errorf("%w: account missing id", ErrInvalidPlatformResponse)
	}
	return account, nil
}

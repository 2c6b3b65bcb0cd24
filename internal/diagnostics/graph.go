package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"sheetcli/internal/config"
	apperrors "sheetcli/internal/errors"
)

const (
	maxErrorBody = 512

	// PlaceholderClientID is the value shipped in sample configs
	PlaceholderClientID = "YOUR_CLIENT_ID"
)

// ProbeReport is what a successful Graph probe found. The organization and
// mailbox settings reads are informational: personal accounts and
// unlicensed users fail them without failing the probe.
type ProbeReport struct {
	TenantVerified bool   `json:"tenant_verified"`
	TenantName     string `json:"tenant_name,omitempty"`

	OrganizationName string `json:"organization_name,omitempty"`
	OrganizationID   string `json:"organization_id,omitempty"`

	DisplayName       string `json:"display_name"`
	UserPrincipalName string `json:"user_principal_name"`
	GuestAccount      bool   `json:"guest_account"`

	MailboxSettingsReachable bool   `json:"mailbox_settings_reachable"`
	TimeZone                 string `json:"time_zone,omitempty"`

	HasMessages    bool   `json:"has_messages"`
	LatestSubject  string `json:"latest_subject,omitempty"`
	LatestReceived string `json:"latest_received,omitempty"`
}

// GraphProbe signs in with the device-code flow and checks that the profile
// and mailbox endpoints answer.
type GraphProbe struct {
	cfg        config.GraphConfig
	authority  string
	tenant     string
	oauth      *oauth2.Config
	prompt     io.Writer
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGraphProbe creates a probe. Sign-in instructions are written to prompt.
func NewGraphProbe(cfg config.GraphConfig, prompt io.Writer, logger *slog.Logger) (*GraphProbe, error) {
	switch strings.TrimSpace(cfg.ClientID) {
	case "":
		return nil, apperrors.NewConfigError("graph client_id is not configured", nil)
	case PlaceholderClientID:
		return nil, apperrors.NewConfigError("graph client_id still holds the placeholder "+PlaceholderClientID, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	authority := strings.TrimRight(cfg.Authority, "/")
	if authority == "" {
		authority = config.DefaultAuthority
	}
	tenant := cfg.TenantID
	if tenant == "" {
		tenant = "common"
	}
	base := authority + "/" + tenant + "/oauth2/v2.0"

	return &GraphProbe{
		cfg:       cfg,
		authority: authority,
		tenant:    tenant,
		oauth: &oauth2.Config{
			ClientID: cfg.ClientID,
			Scopes:   cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:       base + "/authorize",
				TokenURL:      base + "/token",
				DeviceAuthURL: base + "/devicecode",
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		prompt:     prompt,
		httpClient: http.DefaultClient,
		logger:     logger.With(slog.String("component", "graph_probe")),
	}, nil
}

// Run verifies the tenant, signs in, and reads the organization, profile,
// mailbox settings and latest message. The tenant check, sign-in, profile
// and message reads are required and fail as AUTOMATION errors.
func (p *GraphProbe) Run(ctx context.Context) (*ProbeReport, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	report := &ProbeReport{}

	tenantName, err := p.verifyTenant(ctx)
	if err != nil {
		return nil, err
	}
	report.TenantVerified = true
	report.TenantName = tenantName

	p.logger.InfoContext(ctx, "Starting device code sign-in",
		slog.String("tenant", p.tenant),
		slog.Any("scopes", p.cfg.Scopes))

	da, err := p.oauth.DeviceAuth(ctx)
	if err != nil {
		return nil, apperrors.NewAutomationError("device code request failed", err)
	}
	fmt.Fprintf(p.prompt, "To sign in, use a web browser to open %s and enter the code %s\n",
		da.VerificationURI, da.UserCode)

	token, err := p.oauth.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, apperrors.NewAutomationError("sign-in did not complete", err)
	}
	client := p.oauth.Client(ctx, token)

	var org struct {
		Value []struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
		} `json:"value"`
	}
	if err := p.get(ctx, client, "/organization", &org); err != nil {
		p.logger.WarnContext(ctx, "Organization details unavailable", slog.String("error", err.Error()))
	} else if len(org.Value) > 0 {
		report.OrganizationName = org.Value[0].DisplayName
		report.OrganizationID = org.Value[0].ID
	}

	var me struct {
		DisplayName       string `json:"displayName"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := p.get(ctx, client, "/me", &me); err != nil {
		return nil, err
	}
	report.DisplayName = me.DisplayName
	report.UserPrincipalName = me.UserPrincipalName
	report.GuestAccount = strings.Contains(me.UserPrincipalName, "#EXT#")

	var settings struct {
		TimeZone string `json:"timeZone"`
	}
	if err := p.get(ctx, client, "/me/mailboxSettings", &settings); err != nil {
		p.logger.WarnContext(ctx, "Mailbox settings unavailable", slog.String("error", err.Error()))
	} else {
		report.MailboxSettingsReachable = true
		report.TimeZone = settings.TimeZone
	}

	var messages struct {
		Value []struct {
			Subject          string `json:"subject"`
			ReceivedDateTime string `json:"receivedDateTime"`
		} `json:"value"`
	}
	if err := p.get(ctx, client, "/me/messages?$top=1&$select=subject,receivedDateTime", &messages); err != nil {
		return nil, err
	}
	if len(messages.Value) > 0 {
		report.HasMessages = true
		report.LatestSubject = messages.Value[0].Subject
		report.LatestReceived = messages.Value[0].ReceivedDateTime
	}

	p.logger.InfoContext(ctx, "Graph probe succeeded",
		slog.String("user", report.UserPrincipalName),
		slog.Bool("mailbox_settings", report.MailboxSettingsReachable),
		slog.Bool("has_messages", report.HasMessages))
	return report, nil
}

// verifyTenant fetches the tenant's OpenID discovery document and returns
// the tenant segment of its token endpoint.
func (p *GraphProbe) verifyTenant(ctx context.Context) (string, error) {
	discovery := p.authority + "/" + p.tenant + "/v2.0/.well-known/openid-configuration"

	var doc struct {
		Issuer        string `json:"issuer"`
		TokenEndpoint string `json:"token_endpoint"`
	}
	if err := p.fetch(ctx, p.httpClient, discovery, "tenant discovery", &doc); err != nil {
		return "", err
	}

	var name string
	if u, err := url.Parse(doc.TokenEndpoint); err == nil {
		name, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	}
	p.logger.InfoContext(ctx, "Tenant verified",
		slog.String("tenant", p.tenant),
		slog.String("tenant_name", name))
	return name, nil
}

// get fetches a Graph path into out.
func (p *GraphProbe) get(ctx context.Context, client *http.Client, path string, out interface{}) error {
	return p.fetch(ctx, client, strings.TrimRight(p.cfg.Endpoint, "/")+path, path, out)
}

// fetch GETs rawURL into out, bounded by the configured timeout. label
// names the request in errors.
func (p *GraphProbe) fetch(ctx context.Context, client *http.Client, rawURL, label string, out interface{}) error {
	return RunWithTimeout(ctx, p.cfg.Timeout, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return apperrors.NewAutomationError("invalid graph request", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return apperrors.NewAutomationError(label+" request failed", err).WithContext("path", label)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return apperrors.NewAutomationError(
				fmt.Sprintf("%s returned %d: %s", label, resp.StatusCode, strings.TrimSpace(string(body))), nil).
				WithContext("path", label).
				WithContext("status", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.NewAutomationError("invalid "+label+" response", err).WithContext("path", label)
		}
		return nil
	})
}

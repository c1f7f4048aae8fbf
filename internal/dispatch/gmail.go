package dispatch

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/dragonmail/dragonmail/internal/config"
	"github.com/dragonmail/dragonmail/internal/model"
)

// GmailSubmitter implements Submitter using the Gmail API instead of raw
// SMTP. It submits from a single configured mailbox, so the transport
// profile's credentials are not used; the profile still selects the sender
// display identity when its address matches.
type GmailSubmitter struct {
	service       *gmail.Service
	senderAddress string
	senderName    string
}

// NewGmailSubmitter creates a GmailSubmitter from service account
// credentials with domain-wide delegation, impersonating the sender.
func NewGmailSubmitter(ctx context.Context, cfg config.GmailEmailConfig) (*GmailSubmitter, error) {
	if cfg.CredentialsJSON == "" {
		return nil, fmt.Errorf("gmail: credentials JSON is required")
	}
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("gmail: sender address is required")
	}

	jwtConfig, err := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to parse credentials: %w", err)
	}
	jwtConfig.Subject = cfg.SenderAddress

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSubmitter{
		service:       svc,
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
	}, nil
}

// NewGmailSubmitterWithToken creates a GmailSubmitter using OAuth2 client
// credentials plus a refresh token, for personal accounts without
// domain-wide delegation.
func NewGmailSubmitterWithToken(ctx context.Context, cfg config.GmailEmailConfig) (*GmailSubmitter, error) {
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("gmail: sender address is required")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	client := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSubmitter{
		service:       svc,
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
	}, nil
}

// Submit sends one message via the Gmail API. The From address is forced
// to the authenticated mailbox; Gmail rejects arbitrary senders.
func (g *GmailSubmitter) Submit(ctx context.Context, _ model.TransportConfig, msg Email) error {
	msg.From = g.senderAddress
	if msg.FromName == "" {
		msg.FromName = g.senderName
	}

	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(buildMIME(msg)),
	}
	if _, err := g.service.Users.Messages.Send("me", gmailMsg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail: failed to send: %w", err)
	}
	return nil
}

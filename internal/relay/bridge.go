package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// BridgeClient talks to an external messaging bridge over HTTP. One client
// serves one backend; the base URL selects it.
type BridgeClient struct {
	backend Backend
	http    *resty.Client
}

// bridgeReply is the envelope every bridge endpoint answers with.
type bridgeReply struct {
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	Error         string          `json:"error"`
	PhoneCodeHash string          `json:"phoneCodeHash"`
	QRCode        string          `json:"qrCode"`
	Session       string          `json:"session"`
	Result        json.RawMessage `json:"result"`
	Results       json.RawMessage `json:"results"`
}

func NewBridgeClient(backend Backend, baseURL string) *BridgeClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(60 * time.Second)
	client.SetHeader("Content-Type", "application/json")
	return &BridgeClient{backend: backend, http: client}
}

func (b *BridgeClient) post(ctx context.Context, path string, body any) (*bridgeReply, error) {
	var reply bridgeReply
	res, err := b.http.R().
		SetContext(ctx).
		SetBody(body).
		ForceContentType("application/json").
		SetResult(&reply).
		SetError(&reply).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("%s bridge %s: %w", b.backend, path, err)
	}
	if res.IsError() || reply.Status == "error" {
		msg := reply.Message
		if reply.Error != "" {
			msg += ": " + reply.Error
		}
		if msg == "" {
			msg = res.Status()
		}
		return nil, fmt.Errorf("%s bridge %s: %s", b.backend, path, msg)
	}
	return &reply, nil
}

func (b *BridgeClient) StartInit(ctx context.Context, cred Credential) (string, error) {
	reply, err := b.post(ctx, "/start-init", cred)
	if err != nil {
		return "", err
	}
	if reply.PhoneCodeHash != "" {
		return reply.PhoneCodeHash, nil
	}
	return reply.QRCode, nil
}

func (b *BridgeClient) CompleteInit(ctx context.Context, cred Credential, code, challengeRef string) (string, error) {
	reply, err := b.post(ctx, "/complete-init", map[string]string{
		"phoneNumber":   cred.Phone,
		"phoneCode":     code,
		"phoneCodeHash": challengeRef,
	})
	if err != nil {
		return "", err
	}
	return reply.Session, nil
}

func (b *BridgeClient) InitSession(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("empty session token")
	}
	_, err := b.post(ctx, "/init-session", map[string]string{"session": token})
	return err
}

func (b *BridgeClient) Logout(ctx context.Context) error {
	_, err := b.post(ctx, "/logout", struct{}{})
	return err
}

// SendBatch hands a whole message list to the bridge in one request.
func (b *BridgeClient) SendBatch(ctx context.Context, to string, messages []Message) (json.RawMessage, error) {
	reply, err := b.post(ctx, "/send", map[string]any{
		"to":       to,
		"messages": messages,
	})
	if err != nil {
		return nil, err
	}
	return reply.Results, nil
}

func (b *BridgeClient) SendText(ctx context.Context, to, text string) (json.RawMessage, error) {
	reply, err := b.post(ctx, "/send", map[string]string{
		"username": to,
		"text":     text,
	})
	if err != nil {
		return nil, err
	}
	return reply.Result, nil
}

func (b *BridgeClient) SendMedia(ctx context.Context, to, mediaURL string) (json.RawMessage, error) {
	reply, err := b.post(ctx, "/sendMedia", map[string]string{
		"username": to,
		"mediaUrl": mediaURL,
	})
	if err != nil {
		return nil, err
	}
	return reply.Result, nil
}

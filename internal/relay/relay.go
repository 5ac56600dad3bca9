package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"auctionrelay/internal/models"
)

// ErrScrapeFailed is returned when the vehicle page produced no usable record.
var ErrScrapeFailed = errors.New("failed to scrape vehicle data")

// DetailScraper fetches one vehicle page.
type DetailScraper interface {
	RunDetailScrape(ctx context.Context, rawURL string) (*models.DetailResult, error)
}

// ImageProcessor rehosts an image after post-processing it.
type ImageProcessor interface {
	CropAndUpload(ctx context.Context, imageURL string) (string, error)
}

// Outcome is the result of one message sent on its own.
type Outcome struct {
	Type    string          `json:"type"`
	Href    string          `json:"href,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   bool            `json:"error,omitempty"`
	Details string          `json:"details,omitempty"`
}

// Report describes a completed scrape-and-send.
type Report struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	Data        *models.VehicleRecord `json:"data"`
	SendResult  json.RawMessage       `json:"sendResult,omitempty"`
	SendResults []Outcome             `json:"sendResults,omitempty"`
}

// Relay scrapes a vehicle and forwards it to a chat.
type Relay struct {
	scraper  DetailScraper
	sessions *Registry
	images   ImageProcessor
}

// New builds a relay. images may be nil, in which case pictures are sent
// as scraped.
func New(scraper DetailScraper, sessions *Registry, images ImageProcessor) *Relay {
	return &Relay{scraper: scraper, sessions: sessions, images: images}
}

func (r *Relay) Sessions() *Registry { return r.sessions }

// ScrapeAndSend scrapes href and sends the formatted vehicle to `to`.
func (r *Relay) ScrapeAndSend(ctx context.Context, backend, href, to string) (*Report, error) {
	session, err := r.sessions.Get(backend)
	if err != nil {
		return nil, err
	}
	sender, err := session.Sender()
	if err != nil {
		return nil, err
	}

	res, err := r.scraper.RunDetailScrape(ctx, href)
	if err != nil {
		return nil, err
	}
	if res == nil || !res.Success || res.Data == nil {
		msg := "no result"
		if res != nil {
			msg = res.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrScrapeFailed, msg)
	}

	messages := VehicleMessages(res.Data)
	slog.Info("Relaying vehicle", "backend", backend, "title", res.Data.Title(), "messages", len(messages))

	switch session.Backend() {
	case BackendTelegram:
		return r.sendEach(ctx, sender, res.Data, to, messages), nil
	default:
		return r.sendBatch(ctx, sender, session.Backend(), res.Data, to, messages)
	}
}

func (r *Relay) sendBatch(ctx context.Context, sender Sender, backend Backend, data *models.VehicleRecord, to string, messages []Message) (*Report, error) {
	if r.images != nil {
		messages = r.rehostImages(ctx, messages)
	}
	result, err := sender.SendBatch(ctx, to, messages)
	if err != nil {
		return nil, fmt.Errorf("send via %s: %w", backend, err)
	}
	return &Report{
		Success:    true,
		Message:    "Vehicle data sent via " + displayName(backend),
		Data:       data,
		SendResult: result,
	}, nil
}

// sendEach sends the text first and then every image on its own, carrying
// on past individual failures.
func (r *Relay) sendEach(ctx context.Context, sender Sender, data *models.VehicleRecord, to string, messages []Message) *Report {
	text, images := SplitMessages(messages)
	outcomes := make([]Outcome, 0, len(images)+1)

	if len(text) > 0 {
		out := Outcome{Type: MessageText}
		if result, err := sender.SendText(ctx, to, text[0].Body); err != nil {
			out.Error, out.Details = true, err.Error()
		} else {
			out.Result = result
		}
		outcomes = append(outcomes, out)
	}
	for _, img := range images {
		out := Outcome{Type: MessageImage, Href: img.Href}
		if result, err := sender.SendMedia(ctx, to, img.Href); err != nil {
			slog.Warn("Image not sent", "href", img.Href, "error", err)
			out.Error, out.Details = true, err.Error()
		} else {
			out.Result = result
		}
		outcomes = append(outcomes, out)
	}

	return &Report{
		Success:     true,
		Message:     "Vehicle data sent via Telegram",
		Data:        data,
		SendResults: outcomes,
	}
}

// rehostImages swaps every image for its processed copy. Images that fail
// processing are sent unchanged.
func (r *Relay) rehostImages(ctx context.Context, messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	for i, m := range out {
		if m.Type != MessageImage {
			continue
		}
		hosted, err := r.images.CropAndUpload(ctx, m.Href)
		if err != nil {
			slog.Warn("Image processing failed, sending original", "href", m.Href, "error", err)
			continue
		}
		out[i].Href = hosted
	}
	return out
}

func displayName(b Backend) string {
	switch b {
	case BackendWhatsApp:
		return "WhatsApp"
	case BackendTelegram:
		return "Telegram"
	}
	return string(b)
}

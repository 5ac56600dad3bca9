package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultCropPixels is the strip removed from the bottom of auction photos.
const DefaultCropPixels = 20

const DefaultUploadURL = "https://api.imgbb.com/1/upload"

var ErrNoUploadKey = errors.New("image host api key is not configured")

// CropBottom returns img without its bottom px rows. Images no taller than
// px are returned unchanged.
func CropBottom(img image.Image, px int) image.Image {
	b := img.Bounds()
	if px <= 0 || b.Dy() <= px {
		return img
	}
	rect := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y-px)
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

// Processor crops remote images and rehosts them on ImgBB.
type Processor struct {
	http      *resty.Client
	apiKey    string
	uploadURL string
	cropPx    int
}

func NewProcessor(apiKey, uploadURL string) *Processor {
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	return &Processor{
		http:      client,
		apiKey:    apiKey,
		uploadURL: uploadURL,
		cropPx:    DefaultCropPixels,
	}
}

type uploadReply struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CropAndUpload downloads imageURL, crops its bottom strip and returns the
// URL of the uploaded copy.
func (p *Processor) CropAndUpload(ctx context.Context, imageURL string) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoUploadKey
	}
	cropped, err := p.Crop(ctx, imageURL)
	if err != nil {
		return "", err
	}
	return p.upload(ctx, cropped)
}

// Crop downloads imageURL and returns the cropped image re-encoded in its
// original format.
func (p *Processor) Crop(ctx context.Context, imageURL string) ([]byte, error) {
	res, err := p.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("download image: %s", res.Status())
	}

	img, format, err := image.Decode(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	out, err := encode(CropBottom(img, p.cropPx), format)
	if err != nil {
		return nil, err
	}
	slog.Debug("Cropped image", "url", imageURL, "format", format, "bytes", len(out))
	return out, nil
}

func (p *Processor) upload(ctx context.Context, data []byte) (string, error) {
	var reply uploadReply
	res, err := p.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"key":   p.apiKey,
			"image": base64.StdEncoding.EncodeToString(data),
		}).
		ForceContentType("application/json").
		SetResult(&reply).
		SetError(&reply).
		Post(p.uploadURL)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if res.IsError() || reply.Data.URL == "" {
		msg := reply.Error.Message
		if msg == "" {
			msg = res.Status()
		}
		return "", fmt.Errorf("upload image: %s", msg)
	}
	return reply.Data.URL, nil
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

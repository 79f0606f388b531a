package printing

import (
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
)

const qrCodeSize = "100x100"

// QRCodeURL points at the QR image service for the given payload.
func QRCodeURL(baseURL string, data string) string {
	return fmt.Sprintf("%s?size=%s&data=%s", baseURL, qrCodeSize, url.QueryEscape(data))
}

func BarcodeURL(baseURL string, value string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(value)
}

// BottleQRPayload is the text encoded in each bottle label QR code.
func BottleQRPayload(lotNo string, prepDate string, expiry string) string {
	return fmt.Sprintf("LOT:%s|MFG:%s|EXP:%s", lotNo, prepDate, expiry)
}

type ImageSource interface {
	Resolve(ctx context.Context, imageURL string) template.URL
}

// RemoteImages leaves image URLs untouched, or fetches and embeds them as
// data URIs when inlining is enabled.
type RemoteImages struct {
	client *resty.Client
	inline bool
}

func NewRemoteImages(inline bool, timeout time.Duration) *RemoteImages {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteImages{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "image/*"),
		inline: inline,
	}
}

func (images *RemoteImages) Resolve(ctx context.Context, imageURL string) template.URL {
	if !images.inline {
		return template.URL(imageURL)
	}

	dataURI, err := images.fetch(ctx, imageURL)
	if err != nil {
		logger.Warnf(ctx, "inline print image %s: %v", imageURL, err)
		return template.URL(imageURL)
	}
	return template.URL(dataURI)
}

func (images *RemoteImages) fetch(ctx context.Context, imageURL string) (string, error) {
	res, err := images.client.R().
		SetContext(ctx).
		Get(imageURL)
	if err != nil {
		return "", err
	}
	if res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", res.StatusCode())
	}

	body := res.Body()
	if len(body) == 0 {
		return "", fmt.Errorf("empty image body")
	}
	contentType := strings.TrimSpace(strings.Split(res.Header().Get("Content-Type"), ";")[0])
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unexpected content type %q", contentType)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}

package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

const documentTextDetection = "DOCUMENT_TEXT_DETECTION"

// VisionConfig selects credentials for Google Cloud Vision. CredentialsJSON
// wins over CredentialsFile, which wins over APIKey. With none set,
// application default credentials are used.
type VisionConfig struct {
	APIKey          string
	CredentialsJSON string
	CredentialsFile string

	Endpoint   string
	HTTPClient *http.Client
}

// Vision runs document text detection on images and PDFs.
type Vision struct {
	svc *vision.Service
}

func NewVision(ctx context.Context, cfg VisionConfig) (*Vision, error) {
	opts, err := visionOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Vision{svc: svc}, nil
}

func visionOptions(ctx context.Context, cfg VisionConfig) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		return append(opts, option.WithHTTPClient(cfg.HTTPClient)), nil
	}

	credJSON := []byte(strings.TrimSpace(cfg.CredentialsJSON))
	if len(credJSON) == 0 && cfg.CredentialsFile != "" {
		raw, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		credJSON = raw
	}
	switch {
	case len(credJSON) > 0:
		creds, err := google.CredentialsFromJSON(ctx, credJSON, vision.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("parse google credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return opts, nil
}

func (v *Vision) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := NormalizeMimeType(mimeType)
	switch {
	case strings.HasPrefix(normalized, "image/"):
		return v.annotateImage(ctx, data)
	case normalized == MimePDF:
		return v.annotateFile(ctx, data, normalized)
	default:
		return "", ErrUnsupported
	}
}

func (v *Vision) annotateImage(ctx context.Context, data []byte) (string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(data)},
			Features: []*vision.Feature{{Type: documentTextDetection}},
		}},
	}
	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("vision images:annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", nil
	}
	return imageText(resp.Responses[0])
}

// annotateFile sends the document inline; Vision processes at most the first
// five pages of inline files.
func (v *Vision) annotateFile(ctx context.Context, data []byte, mimeType string) (string, error) {
	req := &vision.BatchAnnotateFilesRequest{
		Requests: []*vision.AnnotateFileRequest{{
			InputConfig: &vision.InputConfig{
				Content:  base64.StdEncoding.EncodeToString(data),
				MimeType: mimeType,
			},
			Features: []*vision.Feature{{Type: documentTextDetection}},
		}},
	}
	resp, err := v.svc.Files.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("vision files:annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", nil
	}
	file := resp.Responses[0]
	if file.Error != nil && file.Error.Message != "" {
		return "", fmt.Errorf("vision files:annotate: %s", file.Error.Message)
	}

	pages := make([]string, 0, len(file.Responses))
	for _, page := range file.Responses {
		text, err := imageText(page)
		if err != nil {
			return "", err
		}
		if text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func imageText(resp *vision.AnnotateImageResponse) (string, error) {
	if resp == nil {
		return "", nil
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return "", fmt.Errorf("vision annotate: %s", resp.Error.Message)
	}
	if resp.FullTextAnnotation == nil {
		return "", nil
	}
	return resp.FullTextAnnotation.Text, nil
}

var _ Extractor = (*Vision)(nil)

package pestapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

// SuggestServices finds services that treat the named pest. The token is optional.
func (c *Client) SuggestServices(ctx context.Context, creds Credentials, pest string) ([]Service, error) {
	body, err := c.do(ctx, creds, call{
		op:       "suggest services",
		method:   http.MethodGet,
		path:     "/api/services/suggest?" + url.Values{"pest": {pest}}.Encode(),
		fallback: "Failed to fetch suggested services",
	})
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Services []Service `json:"services"`
	}
	if err := decodeValidated("suggest services", body, suggestionSchema, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Services, nil
}

// AnalyzePest uploads a photo for classification. The token is optional.
func (c *Client) AnalyzePest(ctx context.Context, creds Credentials, image FileUpload) (*Analysis, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeFile(mw, "image", image); err != nil {
		return nil, fmt.Errorf("pestapi analyze pest request error: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("pestapi analyze pest request error: %w", err)
	}

	body, err := c.do(ctx, creds, call{
		op:          "analyze pest",
		method:      http.MethodPost,
		path:        "/api/analyze-pest",
		body:        &buf,
		contentType: mw.FormDataContentType(),
		fallback:    "Failed to analyze image",
	})
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := decodeValidated("analyze pest", body, analysisSchema, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// DeletePest removes a pest entry from the marketplace.
func (c *Client) DeletePest(ctx context.Context, creds Credentials, slug string) error {
	_, err := c.do(ctx, creds, call{
		op:           "delete pest",
		method:       http.MethodDelete,
		path:         "/api/pests/" + url.PathEscape(slug),
		fallback:     "Failed to delete pest",
		authRequired: true,
	})
	return err
}

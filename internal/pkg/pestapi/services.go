package pestapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
)

// ListServices returns the services owned by the authenticated company.
func (c *Client) ListServices(ctx context.Context, creds Credentials) ([]Service, error) {
	body, err := c.do(ctx, creds, call{
		op:           "list services",
		method:       http.MethodGet,
		path:         "/api/company/services",
		fallback:     "Failed to fetch services",
		authRequired: true,
	})
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var services []Service
		if err := decodeValidated("list services", body, serviceListSchema, &services); err != nil {
			return nil, err
		}
		return services, nil
	}

	var wrapped struct {
		Services []Service `json:"services"`
	}
	if err := decodeValidated("list services", body, serviceListSchema, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Services, nil
}

// CreateService submits a new service as multipart form data.
func (c *Client) CreateService(ctx context.Context, creds Credentials, form ServiceForm) error {
	return c.sendServiceForm(ctx, creds, "create service", http.MethodPost, "/api/company/services", form)
}

// UpdateService replaces an existing service with the form contents.
func (c *Client) UpdateService(ctx context.Context, creds Credentials, id ID, form ServiceForm) error {
	path := "/api/company/services/" + url.PathEscape(id.String())
	return c.sendServiceForm(ctx, creds, "update service", http.MethodPut, path, form)
}

// DeleteService removes a service.
func (c *Client) DeleteService(ctx context.Context, creds Credentials, id ID) error {
	_, err := c.do(ctx, creds, call{
		op:           "delete service",
		method:       http.MethodDelete,
		path:         "/api/company/services/" + url.PathEscape(id.String()),
		fallback:     "Failed to delete service",
		authRequired: true,
	})
	return err
}

func (c *Client) sendServiceForm(ctx context.Context, creds Credentials, op, method, path string, form ServiceForm) error {
	// Fail on the token before doing any encoding work.
	if err := creds.check(c.now()); err != nil {
		return err
	}

	body, contentType, err := encodeServiceForm(form)
	if err != nil {
		return fmt.Errorf("pestapi %s request error: %w", op, err)
	}

	_, err = c.do(ctx, creds, call{
		op:           op,
		method:       method,
		path:         path,
		body:         body,
		contentType:  contentType,
		fallback:     "Failed to save service",
		authRequired: true,
	})
	return err
}

func encodeServiceForm(form ServiceForm) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	pestTypes := form.PestTypes
	if pestTypes == nil {
		pestTypes = []string{}
	}
	pestTypesJSON, err := json.Marshal(pestTypes)
	if err != nil {
		return nil, "", err
	}

	fields := []struct{ name, value string }{
		{"title", form.Title},
		{"description", form.Description},
		{"price", form.price()},
		{"service_type", form.ServiceType},
		{"pest_types", string(pestTypesJSON)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if form.Image != nil && len(form.Image.Data) > 0 {
		if err := writeFile(mw, "image", *form.Image); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func writeFile(mw *multipart.Writer, field string, file FileUpload) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	filename := file.Filename
	if filename == "" {
		filename = field
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(file.Data)
	return err
}

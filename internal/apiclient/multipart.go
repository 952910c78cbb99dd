package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
)

// File is one file part of a multipart request.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// Form is a file-bearing request (avatars, menu images, onboarding documents).
type Form struct {
	Fields map[string]string
	Files  []File
}

// Multipart sends form through the upload client and decodes the JSON answer into out.
func (c *Client) Multipart(ctx context.Context, method, path string, form Form, out any) error {
	body, contentType, err := encodeForm(form)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.send(c.upload, req, out)
}

func encodeForm(form Form) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(form.Fields))
	for k := range form.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, form.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("apiclient: write field %s: %w", k, err)
		}
	}

	for _, f := range form.Files {
		if f.Content == nil {
			continue
		}
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("apiclient: create part %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("apiclient: copy part %s: %w", f.Field, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("apiclient: close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

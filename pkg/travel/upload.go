package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
)

const uploadFieldName = "image"

// UploadImage posts the file as a multipart body and returns the hosted URL.
// Size and MIME gating happen in the caller; this helper only moves bytes.
func (c *Client) UploadImage(ctx context.Context, token, filename, contentType string, file io.Reader) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "travel client not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFieldName, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload body")
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy upload body")
	}
	if err := writer.Close(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize upload body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-image", &buf)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(apiKeyHeader, c.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute upload request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.mapError(ctx, resp, "/upload-image")
	}

	var payload struct {
		URL  string `json:"url"`
		Data struct {
			ImageURL string `json:"imageUrl"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode upload response")
	}

	hosted := strings.TrimSpace(payload.URL)
	if hosted == "" {
		hosted = strings.TrimSpace(payload.Data.ImageURL)
	}
	if hosted == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "upload response missing hosted url")
	}
	return hosted, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// UploadResult is the backend's answer to a PDF upload.
type UploadResult struct {
	Message string `json:"message"`
	DocID   string `json:"doc_id"`
	DocName string `json:"pdf_name"`
}

// AlreadyProcessed reports whether the backend skipped processing because
// the document was ingested before. The result still carries a usable
// DocID/DocName pair.
func (r UploadResult) AlreadyProcessed() bool {
	return strings.Contains(strings.ToLower(r.Message), "already")
}

// ProgressFunc receives upload progress. fraction is in [0,100] when the
// total size is known; indeterminate is true (and fraction meaningless)
// when it is not.
type ProgressFunc func(fraction float64, indeterminate bool)

// countingReader reports bytes consumed from the multipart body as they
// leave for the network, so progress tracks real transfer rather than a
// timer.
type countingReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.progress != nil {
		c.read += int64(n)
		if c.total > 0 {
			fraction := float64(c.read) / float64(c.total) * 100
			if fraction > 100 {
				fraction = 100
			}
			c.progress(fraction, false)
		} else {
			c.progress(0, true)
		}
	}
	return n, err
}

// UploadPDF uploads the file at path as multipart form data and reports
// transfer progress through onProgress (may be nil). The multipart body is
// staged to a temp file first so its exact size is known; when staging
// fails the upload still proceeds with indeterminate progress.
func (c *Client) UploadPDF(ctx context.Context, path string, onProgress ProgressFunc) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Stage the encoded body so Content-Length is exact and progress has
	// a denominator.
	tmp, err := os.CreateTemp("", "docchat-upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	writer := multipart.NewWriter(tmp)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to encode file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	total, err := tmp.Seek(0, io.SeekEnd)
	if err != nil {
		total = 0
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind staged upload: %w", err)
	}

	body := &countingReader{r: tmp, total: total, progress: onProgress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-pdf", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if total > 0 {
		req.ContentLength = total
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}

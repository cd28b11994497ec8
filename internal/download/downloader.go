// Package download fetches the raw dataset over HTTP.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/infrastructure"
)

// Downloader fetches a URL into a local file
type Downloader struct {
	client  *http.Client
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewDownloader creates a downloader whose requests time out after timeout.
// A nil tel records nothing.
func NewDownloader(timeout time.Duration, tel *infrastructure.Telemetry, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if tel == nil {
		tel = infrastructure.NewNoopTelemetry()
	}
	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		tracer:  tel.Tracer,
		metrics: tel.Metrics,
		logger:  infrastructure.WithComponent(logger, "download"),
	}
}

// Fetch downloads url to output. The body is written to a temporary file
// next to output and renamed into place, so output is either the complete
// body or untouched. Returns the number of bytes written.
func (d *Downloader) Fetch(ctx context.Context, url, output string) (int64, error) {
	ctx, span := d.tracer.Start(ctx, "download.fetch",
		trace.WithAttributes(
			attribute.String("url.full", url),
			attribute.String("file.path", output),
		))
	defer span.End()

	n, err := d.fetch(ctx, url, output)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("download.bytes", n))
	d.metrics.RecordBytesFetched(ctx, n)
	d.logger.InfoContext(ctx, "download_completed",
		slog.String("url", url),
		slog.String("output", output),
		slog.Int64("bytes", n))
	return n, nil
}

func (d *Downloader) fetch(ctx context.Context, url, output string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, apperrors.NewNetworkError("invalid download request", err).WithContext("url", url)
	}

	d.logger.InfoContext(ctx, "download_started", slog.String("url", url))
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, apperrors.NewNetworkError("download request failed", err).WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, apperrors.NewNetworkError(fmt.Sprintf("download failed with status %d", resp.StatusCode), nil).
			WithContext("url", url).
			WithContext("status", resp.StatusCode)
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, apperrors.NewStorageError("failed to create output directory", err).WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".*.part")
	if err != nil {
		return 0, apperrors.NewStorageError("failed to create temporary file", err).WithContext("path", output)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return 0, apperrors.NewNetworkError("failed to read response body", err).WithContext("url", url)
	}
	if err := tmp.Close(); err != nil {
		return 0, apperrors.NewStorageError("failed to close temporary file", err).WithContext("path", output)
	}
	if err := os.Rename(tmpName, output); err != nil {
		return 0, apperrors.NewStorageError("failed to move download into place", err).WithContext("path", output)
	}
	return n, nil
}

// Fetch downloads url to output with a one-off downloader
func Fetch(ctx context.Context, url, output string, timeout time.Duration) error {
	_, err := NewDownloader(timeout, nil, nil).Fetch(ctx, url, output)
	return err
}

// internal/extractor/extractor.go
package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cozypet/loan-processor-ai/internal/common/config"
	stderrors "github.com/cozypet/loan-processor-ai/internal/common/errors"
	"github.com/cozypet/loan-processor-ai/internal/common/httpclient"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/common/metrics"
	"github.com/cozypet/loan-processor-ai/internal/schema"
)

// Extractor submits loan documents to the external document-understanding
// service and converts the response into an ExtractedRecord. It performs no
// retries; a timeout surfaces as an ordinary transport failure.
type Extractor struct {
	cfg    config.DocumentAIConfig
	client *httpclient.Client
	cache  *Cache
	logger logger.Logger
}

func New(cfg config.DocumentAIConfig, cache *Cache, log logger.Logger) *Extractor {
	return &Extractor{
		cfg: cfg,
		// No client-level timeout; the per-call context bounds the request.
		client: httpclient.NewClient(0),
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "extractor"}),
	}
}

// Extract sends one document plus the schema for category to the extraction
// service. Category must be registered; unknown categories fail before any
// network call.
func (e *Extractor) Extract(ctx context.Context, document []byte, category schema.Category) (*ExtractedRecord, error) {
	if _, err := schema.ParseCategory(string(category)); err != nil {
		return nil, err
	}
	docSchema, ok := schema.For(category)
	if !ok {
		return nil, stderrors.NewUnknownDocumentTypeError(string(category))
	}

	if rec, ok := e.cache.Get(ctx, document, category); ok {
		metrics.ExtractionCacheHits.WithLabelValues(string(category)).Inc()
		e.logger.Debug("extraction cache hit", map[string]interface{}{"category": category})
		return rec, nil
	}

	started := time.Now()
	rec, err := e.extract(ctx, document, category, docSchema)
	metrics.StageDuration.WithLabelValues("extract_" + string(category)).Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}

	e.cache.Put(ctx, document, category, rec)
	return rec, nil
}

func (e *Extractor) extract(ctx context.Context, document []byte, category schema.Category, docSchema schema.Schema) (*ExtractedRecord, error) {
	payload := map[string]interface{}{
		"model": e.cfg.Model,
		"document": map[string]interface{}{
			"type":         "document_url",
			"document_url": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(document),
		},
		"bbox_annotation_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"schema": docSchema,
				"name":   string(category) + "_extraction",
				"strict": true,
			},
		},
		"include_image_base64": false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, stderrors.NewExtractionDataError(fmt.Sprintf("marshal request: %v", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, stderrors.NewExtractionServiceError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("extraction service call failed", map[string]interface{}{
			"category": category,
			"error":    err.Error(),
		})
		return nil, stderrors.NewExtractionServiceError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		e.logger.Error("extraction service returned error status", map[string]interface{}{
			"category": category,
			"status":   resp.StatusCode,
		})
		return nil, stderrors.NewExtractionServiceError(fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)))
	}

	var result extractionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, stderrors.NewExtractionDataError(fmt.Sprintf("decode response: %v", err))
	}

	rec, err := e.parseResponse(&result, category)
	if err != nil {
		return nil, err
	}

	e.logger.Info("document extracted", map[string]interface{}{
		"category": category,
		"degraded": rec.Degraded(),
	})
	return rec, nil
}

// parseResponse looks for a structured annotation on the first page's images
// and falls back to the page markdown when none is present.
func (e *Extractor) parseResponse(result *extractionResponse, category schema.Category) (*ExtractedRecord, error) {
	if len(result.Pages) == 0 {
		return nil, stderrors.NewNoDataExtractedError(string(category))
	}

	page := result.Pages[0]
	for _, image := range page.Images {
		raw, err := image.annotationBytes()
		if err != nil {
			return nil, stderrors.NewExtractionDataError(fmt.Sprintf("annotation not decodable: %v", err))
		}
		if raw == nil {
			continue
		}
		rec, err := recordFromAnnotation(category, raw)
		if err != nil {
			return nil, stderrors.NewExtractionDataError(fmt.Sprintf("annotation does not match %s schema: %v", category, err))
		}
		return rec, nil
	}

	if page.Markdown != "" {
		return &ExtractedRecord{Category: category, RawText: page.Markdown}, nil
	}

	return nil, stderrors.NewNoDataExtractedError(string(category))
}

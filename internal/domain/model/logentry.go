package model

import "time"

// RequestLogEntry is an immutable snapshot of one completed request,
// captured for operator observability after the pipeline finishes.
type RequestLogEntry struct {
	RequestId         string              `json:"requestId"`
	Timestamp         time.Time           `json:"timestamp"`
	Method            string              `json:"method"`
	Path              string              `json:"path"`
	StatusCode        int                 `json:"statusCode"`
	DurationMs        int64               `json:"durationMs"`
	AppliedChaosRule  string              `json:"appliedChaosRule,omitempty"`
	AppliedMockRule   string              `json:"appliedMockRule,omitempty"`
	TargetURL         string              `json:"targetUrl,omitempty"`
	RequestHeaders    map[string]string   `json:"requestHeaders"`
	RequestBodyPreview string             `json:"requestBodyPreview,omitempty"`
	RequestBodyLength int                 `json:"requestBodyLength"`
	ResponseHeaders   map[string][]string `json:"responseHeaders"`
}

// BodyPreviewLimit is the byte ceiling for the UTF-8 request-body
// preview captured in a RequestLogEntry.
const BodyPreviewLimit = 4 * 1024

// RequestLogCapacity is the bounded FIFO capacity of the request log.
const RequestLogCapacity = 200

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"tallermatch/internal/models"
)

// The backend serves request collections either as a flat array or, on
// geo-aware endpoints, wrapped in a GeoJSON FeatureCollection. Records
// must be unwrapped to the flat shape before anything enters the cache.

type geoFeature struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
}

type geoFeatureCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

func decodeRequestCollection(body []byte) ([]models.ServiceRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []models.ServiceRequest{}, nil
	}

	if trimmed[0] == '[' {
		var requests []models.ServiceRequest
		if err := json.Unmarshal(trimmed, &requests); err != nil {
			return nil, fmt.Errorf("backend: decode request list: %w", err)
		}
		return requests, nil
	}

	var collection geoFeatureCollection
	if err := json.Unmarshal(trimmed, &collection); err != nil {
		return nil, fmt.Errorf("backend: decode feature collection: %w", err)
	}
	if collection.Type != "FeatureCollection" {
		return nil, fmt.Errorf("backend: unexpected collection shape %q", collection.Type)
	}

	requests := make([]models.ServiceRequest, 0, len(collection.Features))
	for _, feature := range collection.Features {
		var req models.ServiceRequest
		if err := json.Unmarshal(feature.Properties, &req); err != nil {
			return nil, fmt.Errorf("backend: decode feature properties: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func decodeRequestRecord(body []byte) (models.ServiceRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return models.ServiceRequest{}, nil
	}

	var probe struct {
		Type string `json:"type"`
	}
	// A lone record may still arrive as a Feature envelope.
	if err := json.Unmarshal(trimmed, &probe); err == nil && probe.Type == "Feature" {
		var feature geoFeature
		if err := json.Unmarshal(trimmed, &feature); err != nil {
			return models.ServiceRequest{}, fmt.Errorf("backend: decode feature: %w", err)
		}
		var req models.ServiceRequest
		if err := json.Unmarshal(feature.Properties, &req); err != nil {
			return models.ServiceRequest{}, fmt.Errorf("backend: decode feature properties: %w", err)
		}
		return req, nil
	}

	var req models.ServiceRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return models.ServiceRequest{}, fmt.Errorf("backend: decode request: %w", err)
	}
	return req, nil
}

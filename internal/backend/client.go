package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tallermatch/internal/models"
)

// Client is a minimal marketplace-backend API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient constructs the client. A nil httpClient falls back to a
// sane-timeout default.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// ListRequests fetches the user's full request collection.
func (c *Client) ListRequests(ctx context.Context, token string) ([]models.ServiceRequest, error) {
	body, err := c.do(ctx, http.MethodGet, "/requests", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeRequestCollection(body)
}

// ListActiveRequests fetches only the requests still in play.
func (c *Client) ListActiveRequests(ctx context.Context, token string) ([]models.ServiceRequest, error) {
	body, err := c.do(ctx, http.MethodGet, "/requests/active", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeRequestCollection(body)
}

// GetRequest fetches one request with its offers.
func (c *Client) GetRequest(ctx context.Context, token, id string) (models.ServiceRequest, error) {
	body, err := c.do(ctx, http.MethodGet, "/requests/"+id, token, nil)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return decodeRequestRecord(body)
}

// CreateRequest creates a draft request.
func (c *Client) CreateRequest(ctx context.Context, token string, in models.CreateRequestInput) (models.ServiceRequest, error) {
	body, err := c.do(ctx, http.MethodPost, "/requests", token, in)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return decodeRequestRecord(body)
}

// AddServices appends services to a draft request.
func (c *Client) AddServices(ctx context.Context, token, id string, serviceIDs []string) (models.ServiceRequest, error) {
	payload := map[string][]string{"servicios_solicitados": serviceIDs}
	body, err := c.do(ctx, http.MethodPost, "/requests/"+id+"/services", token, payload)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return decodeRequestRecord(body)
}

// PublishRequest opens a draft to provider bidding.
func (c *Client) PublishRequest(ctx context.Context, token, id string) (models.ServiceRequest, error) {
	body, err := c.do(ctx, http.MethodPost, "/requests/"+id+"/publish", token, nil)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return decodeRequestRecord(body)
}

// CancelRequest cancels a request.
func (c *Client) CancelRequest(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/requests/"+id, token, nil)
	return err
}

// SelectOffer awards the request to the given offer. A 404 here means
// the offer is gone (withdrawn or already superseded); the request was
// loaded to pick it in the first place.
func (c *Client) SelectOffer(ctx context.Context, token, requestID, offerID string) (models.ServiceRequest, error) {
	payload := map[string]string{"oferta_id": offerID}
	body, err := c.do(ctx, http.MethodPost, "/requests/"+requestID+"/select-offer", token, payload)
	if errors.Is(err, models.ErrRequestNotFound) {
		return models.ServiceRequest{}, models.ErrOfferNotFound
	}
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return decodeRequestRecord(body)
}

func (c *Client) do(ctx context.Context, method, path, token string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, models.ErrNoSession
	case resp.StatusCode == http.StatusNotFound:
		return nil, models.ErrRequestNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("backend: unexpected status %s for %s %s", resp.Status, method, path)
	}

	return io.ReadAll(resp.Body)
}

package admission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hospital-admission/internal/models"
)

const maxErrorBody = 1 << 20

// RemoteAdmitter admits patients through the patient API of another
// instance of this service (POST /api/patients).
type RemoteAdmitter struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemoteAdmitter creates an admitter for the API at baseURL.
// token is sent as a bearer token when non-empty.
func NewRemoteAdmitter(baseURL, token string, client *http.Client) *RemoteAdmitter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RemoteAdmitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

// Admit posts the draft and decodes the stored patient from the
// {"success":true,"data":{...}} envelope. Non-2xx responses are returned as
// *ResponseError carrying the {"error":"..."} body.
func (a *RemoteAdmitter) Admit(ctx context.Context, draft models.PatientDraft) (*models.Patient, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to encode admission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/patients", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build admit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var data ResponseData
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&data)
		return nil, &ResponseError{
			Response: &Response{Status: resp.StatusCode, Data: data},
			Message:  fmt.Sprintf("request failed with status code %d", resp.StatusCode),
		}
	}

	var envelope struct {
		Data models.Patient `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode admitted patient: %w", err)
	}
	return &envelope.Data, nil
}

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Verifier confirms a payment reference against the gateway's
// verification endpoint (Paystack-style: GET {base}/{reference} with a
// secret-key bearer token). The redirect/checkout flow never touches
// this service; verification is only a safety net for callers that
// create a purchase before their own webhook has confirmed.
type Verifier struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

type VerificationResult struct {
	Verified bool
	Amount   float64
	Channel  string
}

func NewVerifier(baseURL, secretKey string, client *http.Client) *Verifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Verifier{BaseURL: baseURL, SecretKey: secretKey, Client: client}
}

func (v *Verifier) VerifyReference(reference string) (*VerificationResult, error) {
	url := fmt.Sprintf("%s/%s", v.BaseURL, reference)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway verification error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway verification failed: status %d", resp.StatusCode)
	}

	var body struct {
		Status bool `json:"status"`
		Data   struct {
			Status  string `json:"status"`
			Amount  int64  `json:"amount"`
			Channel string `json:"channel"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode verification response: %w", err)
	}

	return &VerificationResult{
		Verified: body.Status && body.Data.Status == "success",
		// Gateways report amounts in the minor unit (pesewas/kobo).
		Amount:  float64(body.Data.Amount) / 100,
		Channel: body.Data.Channel,
	}, nil
}

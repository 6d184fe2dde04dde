package paypal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Makra-ca/frum-toronto-sub001/internal/config"
)

// Client REST PayPal : échange de token OAuth, vérification de signature
// webhook, détails et annulation d'abonnement. L'URL de base (sandbox ou
// live) et les identifiants sont injectés à la construction, jamais relus
// depuis l'environnement.
type Client struct {
	clientID   string
	secret     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.PayPalConfig) *Client {
	return &Client{
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
		baseURL:  cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// SignatureHeaders regroupe les en-têtes de transmission fournis par PayPal
// avec chaque livraison de webhook
type SignatureHeaders struct {
	TransmissionID   string
	TransmissionTime string
	CertURL          string
	AuthAlgo         string
	TransmissionSig  string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// getAccessToken récupère un token OAuth client_credentials
func (cl *Client) getAccessToken() (string, error) {
	req, err := http.NewRequest(http.MethodPost, cl.baseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(cl.clientID, cl.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("appel token PayPal : %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token PayPal refusé (%d) : %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("réponse token PayPal illisible : %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token PayPal vide")
	}
	return token.AccessToken, nil
}

// doAuthenticated exécute une requête API avec un bearer token frais
func (cl *Client) doAuthenticated(method, path string, payload interface{}) (*http.Response, error) {
	token, err := cl.getAccessToken()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, cl.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return cl.httpClient.Do(req)
}

// VerifyWebhookSignature appelle l'API de vérification PayPal avec les
// en-têtes de transmission et le corps brut reçu (les octets exacts, pas une
// re-sérialisation). Retourne true uniquement si PayPal répond SUCCESS.
func (cl *Client) VerifyWebhookSignature(webhookID string, headers SignatureHeaders, rawBody []byte) (bool, error) {
	payload := map[string]interface{}{
		"transmission_id":   headers.TransmissionID,
		"transmission_time": headers.TransmissionTime,
		"cert_url":          headers.CertURL,
		"auth_algo":         headers.AuthAlgo,
		"transmission_sig":  headers.TransmissionSig,
		"webhook_id":        webhookID,
		"webhook_event":     json.RawMessage(rawBody),
	}

	resp, err := cl.doAuthenticated(http.MethodPost, "/v1/notifications/verify-webhook-signature", payload)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("vérification de signature refusée (%d) : %s", resp.StatusCode, string(body))
	}

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("réponse de vérification illisible : %w", err)
	}

	return result.VerificationStatus == "SUCCESS", nil
}

// SubscriptionDetails est la vue minimale dont on a besoin sur un abonnement
// côté PayPal
type SubscriptionDetails struct {
	ID         string `json:"id"`
	PlanID     string `json:"plan_id"`
	Status     string `json:"status"`
	Subscriber struct {
		PayerID string `json:"payer_id"`
	} `json:"subscriber"`
}

// GetSubscriptionDetails récupère l'état en direct d'un abonnement PayPal
func (cl *Client) GetSubscriptionDetails(subscriptionID string) (*SubscriptionDetails, error) {
	resp, err := cl.doAuthenticated(http.MethodGet, "/v1/billing/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("détails d'abonnement refusés (%d) : %s", resp.StatusCode, string(body))
	}

	var details SubscriptionDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("détails d'abonnement illisibles : %w", err)
	}
	return &details, nil
}

// CancelSubscription annule un abonnement côté PayPal
func (cl *Client) CancelSubscription(subscriptionID, reason string) error {
	resp, err := cl.doAuthenticated(http.MethodPost,
		"/v1/billing/subscriptions/"+subscriptionID+"/cancel",
		map[string]string{"reason": reason})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("annulation PayPal refusée (%d) : %s", resp.StatusCode, string(body))
	}
	return nil
}

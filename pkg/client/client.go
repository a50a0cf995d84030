package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/crnlicp/chronolock/pkg/types"
)

// Client wraps the chronolock HTTP API for easy Go usage.
type Client struct {
	baseURL    string
	principal  string
	httpClient *http.Client
}

// NewClient creates a new chronolock client talking to addr (scheme and
// host, e.g. "http://localhost:8080"). principal is sent as the
// X-Principal header on every request; pass "" for the anonymous caller.
func NewClient(addr, principal string) *Client {
	return &Client{
		baseURL:   addr,
		principal: principal,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithPrincipal returns a shallow copy of the client that authenticates
// as a different principal, sharing the underlying http.Client.
func (c *Client) WithPrincipal(principal string) *Client {
	clone := *c
	clone.principal = principal
	return &clone
}

type envelope struct {
	OK  json.RawMessage `json:"ok,omitempty"`
	Err *errBody        `json:"err,omitempty"`
}

type errBody struct {
	Kind   types.ErrorKind `json:"kind"`
	Detail string          `json:"detail,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.principal != "" {
		req.Header.Set("X-Principal", c.principal)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, path, err)
	}
	if env.Err != nil {
		return types.NewError(env.Err.Kind, env.Err.Detail)
	}
	if out != nil && len(env.OK) > 0 {
		if err := json.Unmarshal(env.OK, out); err != nil {
			return fmt.Errorf("decode result %s %s: %w", method, path, err)
		}
	}
	return nil
}

func query(params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		if val != "" {
			v.Set(k, val)
		}
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// RegisterUser registers the client's principal with the ledger, applying
// referralCode if non-empty.
func (c *Client) RegisterUser(ctx context.Context, referralCode string) (welcomeAmount, code string, err error) {
	var req struct {
		ReferralCode *string `json:"referral_code,omitempty"`
	}
	if referralCode != "" {
		req.ReferralCode = &referralCode
	}
	var out struct {
		WelcomeAmount string `json:"welcome_amount"`
		ReferralCode  string `json:"referral_code"`
	}
	if err := c.do(ctx, http.MethodPost, "/register_user", req, &out); err != nil {
		return "", "", err
	}
	return out.WelcomeAmount, out.ReferralCode, nil
}

// ClaimReferral credits referralCode's owner with the referral reward,
// independently of registration. It can be called any time after the
// referee has registered.
func (c *Client) ClaimReferral(ctx context.Context, referralCode string) error {
	req := struct {
		ReferralCode string `json:"referral_code"`
	}{ReferralCode: referralCode}
	return c.do(ctx, http.MethodPost, "/claim_referral", req, nil)
}

// Transfer moves amount (base-10 decimal string) to the given account.
func (c *Client) Transfer(ctx context.Context, to, toSubaccount, amount string) (accepted string, err error) {
	req := struct {
		To           string `json:"to"`
		ToSubaccount string `json:"to_subaccount,omitempty"`
		Amount       string `json:"amount"`
	}{To: to, ToSubaccount: toSubaccount, Amount: amount}
	var out struct {
		Accepted string `json:"accepted"`
	}
	if err := c.do(ctx, http.MethodPost, "/transfer", req, &out); err != nil {
		return "", err
	}
	return out.Accepted, nil
}

// BalanceOf returns the account balance as a base-10 decimal string.
func (c *Client) BalanceOf(ctx context.Context, owner, subaccount string) (string, error) {
	var balance string
	path := "/balance_of" + query(map[string]string{"owner": owner, "subaccount": subaccount})
	if err := c.do(ctx, http.MethodGet, path, nil, &balance); err != nil {
		return "", err
	}
	return balance, nil
}

// Metadata returns the ledger's static and dynamic metadata.
func (c *Client) Metadata(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/metadata", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type userKeyWire struct {
	UserTag    string `json:"user_tag"`
	WrappedKey []byte `json:"wrapped_key"`
}

// ChronolockCreate creates a new chronolock, returning its wire representation.
func (c *Client) ChronolockCreate(ctx context.Context, title string, unlockTime int64, encryptedMetadata []byte) (map[string]interface{}, error) {
	req := struct {
		Title             string `json:"title"`
		UnlockTime        int64  `json:"unlock_time"`
		EncryptedMetadata []byte `json:"encrypted_metadata"`
	}{Title: title, UnlockTime: unlockTime, EncryptedMetadata: encryptedMetadata}
	var out map[string]interface{}
	if err := c.do(ctx, http.MethodPost, "/chronolock_create", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChronolockGet fetches a chronolock by id.
func (c *Client) ChronolockGet(ctx context.Context, id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	path := "/chronolock_get" + query(map[string]string{"id": id})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChronolockTransfer transfers ownership of a chronolock.
func (c *Client) ChronolockTransfer(ctx context.Context, id, to string) error {
	req := struct {
		ID string `json:"id"`
		To string `json:"to"`
	}{ID: id, To: to}
	return c.do(ctx, http.MethodPost, "/chronolock_transfer", req, nil)
}

// ChronolockBurn destroys a chronolock.
func (c *Client) ChronolockBurn(ctx context.Context, id string) error {
	req := struct {
		ID string `json:"id"`
	}{ID: id}
	return c.do(ctx, http.MethodPost, "/chronolock_burn", req, nil)
}

// ChronolockPage lists chronolocks starting at offset, up to limit entries.
func (c *Client) ChronolockPage(ctx context.Context, offset, limit int) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	path := "/chronolock_page" + query(map[string]string{
		"offset": fmt.Sprintf("%d", offset),
		"limit":  fmt.Sprintf("%d", limit),
	})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MediaStart begins a chunked media upload of totalChunks chunks,
// returning the assigned media id.
func (c *Client) MediaStart(ctx context.Context, totalChunks uint32) (string, error) {
	req := struct {
		TotalChunks uint32 `json:"total_chunks"`
	}{TotalChunks: totalChunks}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/media_start", req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// MediaPutChunk uploads one chunk of a media object.
func (c *Client) MediaPutChunk(ctx context.Context, id string, index uint32, data []byte) error {
	req := struct {
		ID    string `json:"id"`
		Index uint32 `json:"index"`
		Data  []byte `json:"data"`
	}{ID: id, Index: index, Data: data}
	return c.do(ctx, http.MethodPost, "/media_put_chunk", req, nil)
}

// MediaFinish marks a media upload complete.
func (c *Client) MediaFinish(ctx context.Context, id string) error {
	req := struct {
		ID string `json:"id"`
	}{ID: id}
	return c.do(ctx, http.MethodPost, "/media_finish", req, nil)
}

// MediaGet fetches the raw bytes of a finished media object via the
// GET /media/{id} route.
func (c *Client) MediaGet(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/media/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.principal != "" {
		req.Header.Set("X-Principal", c.principal)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request media get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.ErrTokenNotFound, fmt.Sprintf("media %s: status %d", id, resp.StatusCode))
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	return buf.Bytes(), nil
}

// IBEPublicKey fetches the network's IBE master public key.
func (c *Client) IBEPublicKey(ctx context.Context) ([]byte, error) {
	var out struct {
		PublicKey []byte `json:"public_key"`
	}
	if err := c.do(ctx, http.MethodPost, "/ibe_public_key", nil, &out); err != nil {
		return nil, err
	}
	return out.PublicKey, nil
}

// GetTimeDecryptionKey requests the decryption key for unlockTimeHex,
// wrapped under transportPublicKey. Only succeeds once unlockTimeHex's
// time has passed.
func (c *Client) GetTimeDecryptionKey(ctx context.Context, unlockTimeHex string, transportPublicKey []byte) ([]byte, error) {
	req := struct {
		UnlockTimeHex      string `json:"unlock_time_hex"`
		TransportPublicKey []byte `json:"transport_public_key"`
	}{UnlockTimeHex: unlockTimeHex, TransportPublicKey: transportPublicKey}
	var out struct {
		EncryptedKey []byte `json:"encrypted_key"`
	}
	if err := c.do(ctx, http.MethodPost, "/get_time_decryption_key", req, &out); err != nil {
		return nil, err
	}
	return out.EncryptedKey, nil
}

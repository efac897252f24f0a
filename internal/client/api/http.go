package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/common"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
	"github.com/google/uuid"
)

const maxBodySize = 4 << 20

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger logging.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// errorBody is the shape the API uses for failures.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (r *response) statusError() *StatusError {
	se := &StatusError{Code: r.status}
	var eb errorBody
	if err := json.Unmarshal(r.body, &eb); err == nil {
		se.Message = eb.Message
		se.Fields = eb.Errors
	} else if s := strings.TrimSpace(string(r.body)); s != "" && len(s) < 512 {
		se.Message = strings.Trim(s, `"`)
	}
	return se
}

// decode fails with a *StatusError on non-2xx and ErrBadResponse when the
// body does not fit out.
func (r *response) decode(out any) error {
	if !r.ok() {
		return r.statusError()
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, token string, in any) (*response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, c.mapError(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.mapError(fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug(ctx, "api request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	return &response{status: resp.StatusCode, body: b}, nil
}

type detailsBody[T any] struct {
	Details []T `json:"details"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", nil, "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, &AuthError{Message: DefaultLoginMessage, Err: err}
	}

	if !resp.ok() {
		se := resp.statusError()
		msg := se.Message
		if msg == "" {
			msg = DefaultLoginMessage
		}
		return nil, &AuthError{Message: msg, Err: se}
	}

	var lr LoginResponse
	if err := resp.decode(&lr); err != nil {
		return nil, &AuthError{Message: DefaultLoginMessage, Err: err}
	}
	return &lr, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	resp, err := c.do(ctx, http.MethodPost, "/logout", nil, token, nil)
	if err != nil {
		return err
	}
	return resp.decode(nil)
}

// GetUser returns nil without error when the API knows no such user.
func (c *HTTPClient) GetUser(ctx context.Context, token string, id models.UserID) (*models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/GetUser", url.Values{"id": {string(id)}}, token, nil)
	if err != nil {
		return nil, err
	}
	var body detailsBody[models.User]
	if err := resp.decode(&body); err != nil {
		return nil, err
	}
	if len(body.Details) == 0 {
		return nil, nil
	}
	return &body.Details[0], nil
}

// UpdateUser saves profile and returns the user as the API now has it, or
// nil when the response carries no user.
func (c *HTTPClient) UpdateUser(ctx context.Context, token string, profile models.Profile) (*models.User, error) {
	resp, err := c.do(ctx, http.MethodPost, "/UpdateUser", nil, token, profile)
	if err != nil {
		return nil, err
	}
	var body detailsBody[models.User]
	if err := resp.decode(&body); err != nil {
		return nil, err
	}
	if len(body.Details) == 0 {
		return nil, nil
	}
	return &body.Details[0], nil
}

func (c *HTTPClient) GetUsers(ctx context.Context, token string) ([]models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/GetUsers", nil, token, nil)
	if err != nil {
		return nil, err
	}
	var body detailsBody[models.User]
	if err := resp.decode(&body); err != nil {
		return nil, err
	}
	if body.Details == nil {
		return []models.User{}, nil
	}
	return body.Details, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, token string, id models.UserID) error {
	resp, err := c.do(ctx, http.MethodPost, "/DeleteUser", nil, token, struct {
		ID models.UserID `json:"id"`
	}{id})
	if err != nil {
		return err
	}
	return resp.decode(nil)
}

func (c *HTTPClient) GetShipments(ctx context.Context, token string, userID models.UserID) ([]models.Shipment, error) {
	resp, err := c.do(ctx, http.MethodGet, "/GetShipments", url.Values{"user_id": {string(userID)}}, token, nil)
	if err != nil {
		return nil, err
	}
	var body detailsBody[models.Shipment]
	if err := resp.decode(&body); err != nil {
		return nil, err
	}
	if body.Details == nil {
		return []models.Shipment{}, nil
	}
	return body.Details, nil
}

// GetShipment fails with ErrNotFound when the API returns no shipment.
func (c *HTTPClient) GetShipment(ctx context.Context, token string, id string) (*models.Shipment, error) {
	resp, err := c.do(ctx, http.MethodGet, "/GetShipment", url.Values{"shipment_id": {id}}, token, nil)
	if err != nil {
		return nil, err
	}
	var body detailsBody[models.Shipment]
	if err := resp.decode(&body); err != nil {
		return nil, err
	}
	if len(body.Details) == 0 {
		return nil, fmt.Errorf("shipment %s: %w", id, ErrNotFound)
	}
	return &body.Details[0], nil
}

// GetQuote returns one quote per known carrier. An address the carriers do
// not serve is not an error: every carrier comes back unavailable with the
// API's message, whatever the response status.
func (c *HTTPClient) GetQuote(ctx context.Context, token string, payload models.QuotePayload) ([]models.CarrierQuote, error) {
	resp, err := c.do(ctx, http.MethodPost, "/GetQuote", nil, token, payload)
	if err != nil {
		return nil, err
	}

	text := string(resp.body)
	if strings.Contains(text, models.NotDeliverableMessage) {
		return models.UndeliverableQuotes(text), nil
	}

	var quotes []models.CarrierQuote
	if err := resp.decode(&quotes); err != nil {
		return nil, err
	}
	return models.ReconcileQuotes(quotes), nil
}

func (c *HTTPClient) RequestQuote(ctx context.Context, token string, payload models.QuotePayload) error {
	resp, err := c.do(ctx, http.MethodPost, "/RequestQuote", nil, token, payload)
	if err != nil {
		return err
	}
	return resp.decode(nil)
}

func (c *HTTPClient) SendResetCode(ctx context.Context, email string) error {
	resp, err := c.do(ctx, http.MethodPost, "/SendResetCode", url.Values{"email": {email}}, "", nil)
	if err != nil {
		return err
	}
	return resp.decode(nil)
}

func (c *HTTPClient) VerifyResetCode(ctx context.Context, email, code, newPassword string) error {
	q := url.Values{"email": {email}, "token": {code}, "password": {newPassword}}
	resp, err := c.do(ctx, http.MethodPost, "/VerifyResetCode", q, "", nil)
	if err != nil {
		return err
	}
	return resp.decode(nil)
}

type existsBody struct {
	Exists bool `json:"exists"`
}

func (c *HTTPClient) check(ctx context.Context, path, token string, in any) (bool, error) {
	resp, err := c.do(ctx, http.MethodPost, path, nil, token, in)
	if err != nil {
		return false, err
	}
	var body existsBody
	if err := resp.decode(&body); err != nil {
		return false, err
	}
	return body.Exists, nil
}

func (c *HTTPClient) CheckEmail(ctx context.Context, token, email string, exclude models.UserID) (bool, error) {
	return c.check(ctx, "/CheckEmail", token, struct {
		Email   string        `json:"email"`
		Exclude models.UserID `json:"exclude_user_id"`
	}{email, exclude})
}

func (c *HTTPClient) CheckPhoneNumber(ctx context.Context, token, phone string, exclude models.UserID) (bool, error) {
	return c.check(ctx, "/CheckPhoneNumber", token, struct {
		Phone   string        `json:"phone_number"`
		Exclude models.UserID `json:"exclude_user_id"`
	}{phone, exclude})
}

func (c *HTTPClient) Support(ctx context.Context, token, category, message string) error {
	resp, err := c.do(ctx, http.MethodPost, "/Support", nil, token, map[string]string{
		"category": category,
		"message":  message,
	})
	if err != nil {
		return err
	}
	return resp.decode(nil)
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"meetsync/models"
)

// APIError is a non-2xx answer from the backend, carrying the message
// body when one was provided.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// Client talks to the meeting backend over its REST surface. Every
// request carries the bearer credential and passes through a shared
// rate limiter.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a Client for the given base URL and bearer token.
// ratePerMin bounds outbound requests; values <= 0 disable the limiter.
func New(baseURL, token string, ratePerMin int) *Client {
	var limiter *rate.Limiter
	if ratePerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMin)), ratePerMin)
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: limiter,
	}
}

// meetingList is the wrapper shape the bulk fetch endpoint answers with.
type meetingList struct {
	EventDtoList []models.Meeting `json:"eventDtoList"`
}

// CurrentUser resolves the authenticated user's account.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/secured/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckToken asks the backend whether the bearer credential is still valid.
func (c *Client) CheckToken(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/secured/checkToken", nil, nil)
}

// UserMeetings fetches the caller's full meeting collection.
func (c *Client) UserMeetings(ctx context.Context) ([]models.Meeting, error) {
	var list meetingList
	if err := c.do(ctx, http.MethodGet, "/secured/users/meetings", nil, &list); err != nil {
		return nil, err
	}
	return list.EventDtoList, nil
}

// UserByID looks up a user account by id.
func (c *Client) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/secured/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByUsername looks up a user account by display name.
func (c *Client) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	path := "/secured/users?username=" + url.QueryEscape(username)
	if err := c.do(ctx, http.MethodGet, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateMeeting submits a new meeting and returns the created record.
func (c *Client) CreateMeeting(ctx context.Context, req models.CreateMeetingRequest) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := c.do(ctx, http.MethodPost, "/secured/meetings", req, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// Respond submits the caller's answer to a pending meeting.
func (c *Client) Respond(ctx context.Context, meetingID int64, req models.RespondRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/secured/meetings/%d/selectDays", meetingID), req, nil)
}

// Schedule fixes the meeting at the chosen start instant.
func (c *Client) Schedule(ctx context.Context, meetingID int64, req models.ScheduleRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/secured/meetings/%d/schedule", meetingID), req, nil)
}

// DeleteMeeting removes the meeting on the backend.
func (c *Client) DeleteMeeting(ctx context.Context, meetingID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/secured/meetings/%d", meetingID), nil, nil)
}

// Availability fetches the precomputed availability summary for a meeting.
func (c *Client) Availability(ctx context.Context, meetingID int64) (*models.AvailabilitySummary, error) {
	var summary models.AvailabilitySummary
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/secured/meetings/%d/availability", meetingID), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// Some endpoints answer 200 with an empty body.
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the backend's {"message": ...} body when present.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: "request failed"}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}

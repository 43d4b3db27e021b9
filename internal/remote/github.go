package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

const (
	DefaultBaseURL  = "https://api.github.com"
	DefaultFilename = "bookmarks.json"
	commitMessage   = "Update bookmarks"
)

var locationPart = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// GitHubOptions configures a GitHub contents API client.
type GitHubOptions struct {
	BaseURL    string
	Filename   string
	Branch     string
	HTTPClient *http.Client
	UserAgent  string
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Logger     logger.Logger
}

// GitHub stores the Document as one file in a repository through the
// contents API. The file's blob sha is the version token.
type GitHub struct {
	baseURL    string
	filename   string
	branch     string
	httpClient *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     logger.Logger
}

var _ Gateway = (*GitHub)(nil)

// NewGitHub creates a client. Zero options fall back to api.github.com,
// bookmarks.json, two retries and a 2s backoff cap. A negative MaxRetries
// disables retries.
func NewGitHub(opts GitHubOptions) *GitHub {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	filename := strings.Trim(strings.TrimSpace(opts.Filename), "/")
	if filename == "" {
		filename = DefaultFilename
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = "bookmark-browser"
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = 2
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &GitHub{
		baseURL:    baseURL,
		filename:   filename,
		branch:     strings.TrimSpace(opts.Branch),
		httpClient: httpClient,
		userAgent:  userAgent,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		logger:     log,
	}
}

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Fetch downloads and decodes the remote Document.
func (c *GitHub) Fetch(ctx context.Context, credential, location string) (domain.Document, Token, error) {
	const op = "fetch"
	endpoint, err := c.contentsURL(op, location, true)
	if err != nil {
		return domain.Document{}, "", err
	}

	var resp contentsResponse
	if err := c.do(ctx, op, http.MethodGet, endpoint, credential, nil, &resp); err != nil {
		return domain.Document{}, "", err
	}
	if resp.Encoding != "" && resp.Encoding != "base64" {
		return domain.Document{}, "", newError(KindMalformedContent, op, 0, fmt.Errorf("unsupported encoding %q", resp.Encoding))
	}
	if resp.SHA == "" {
		return domain.Document{}, "", newError(KindMalformedContent, op, 0, errors.New("response carries no sha"))
	}
	doc, err := DecodeDocument(resp.Content)
	if err != nil {
		return domain.Document{}, "", newError(KindMalformedContent, op, 0, err)
	}
	return doc, Token(resp.SHA), nil
}

// ProbeVersion reads the current sha without decoding the content.
func (c *GitHub) ProbeVersion(ctx context.Context, credential, location string) (Token, error) {
	const op = "probe"
	endpoint, err := c.contentsURL(op, location, true)
	if err != nil {
		return "", err
	}

	var resp contentsResponse
	err = c.do(ctx, op, http.MethodGet, endpoint, credential, nil, &resp)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", nil
	case err != nil:
		return "", err
	}
	if resp.SHA == "" {
		return "", newError(KindMalformedContent, op, 0, errors.New("response carries no sha"))
	}
	return Token(resp.SHA), nil
}

// Store uploads doc. When expected is empty the current sha is probed
// immediately before the write so an object created concurrently is not
// overwritten blindly.
//
// The write itself is only repeated once the remote has been re-read: a
// failed response may hide a write that was committed, and a second write
// would then be judged against a version that no longer exists.
func (c *GitHub) Store(ctx context.Context, credential, location string, doc domain.Document, expected Token) (Token, error) {
	const op = "store"
	endpoint, err := c.contentsURL(op, location, false)
	if err != nil {
		return "", err
	}

	probed := expected == ""
	if probed {
		expected, err = c.ProbeVersion(ctx, credential, location)
		if err != nil {
			return "", err
		}
		c.logger.Debug("probed remote version",
			logger.String("location", location),
			logger.Bool("exists", expected != ""))
	}

	content, err := EncodeDocument(doc)
	if err != nil {
		return "", newError(KindOther, op, 0, fmt.Errorf("encode document: %w", err))
	}

	for attempt := 0; ; attempt++ {
		body := putRequest{
			Message: commitMessage,
			Content: content,
			SHA:     string(expected),
			Branch:  c.branch,
		}
		var resp putResponse
		err := c.do(ctx, op, http.MethodPut, endpoint, credential, body, &resp)
		if err == nil {
			if resp.Content.SHA == "" {
				return "", newError(KindMalformedContent, op, 0, errors.New("response carries no sha"))
			}
			return Token(resp.Content.SHA), nil
		}

		// GitHub answers 422 rather than 409 when a sha-less write meets an
		// existing file.
		if expected == "" && errors.Is(err, ErrValidation) {
			if current, perr := c.ProbeVersion(ctx, credential, location); perr == nil && current != "" {
				return "", newError(KindConflict, op, statusOf(err), err)
			}
			return "", err
		}
		if !outcomeUnknown(err) {
			return "", err
		}

		current, landed, serr := c.settle(ctx, credential, location, doc)
		switch {
		case serr != nil:
			c.logger.Debug("could not re-read remote after failed write", logger.Error(serr))
			return "", err
		case landed:
			c.logger.Info("write was committed despite a failed response",
				logger.String("location", location),
				logger.Int("status", statusOf(err)))
			return current, nil
		case current != expected:
			return "", newError(KindConflict, op, statusOf(err), err)
		case attempt >= c.maxRetries:
			return "", err
		}

		delay := c.retryDelay(attempt+1, "")
		c.logger.Warn("remote write failed, retrying",
			logger.String("op", op),
			logger.Int("status", statusOf(err)),
			logger.Int("attempt", attempt+1),
			logger.Duration("next_retry_in", delay))
		if waitErr := waitWithContext(ctx, delay); waitErr != nil {
			return "", transportError(op, waitErr)
		}
	}
}

// settle reads the remote after a write whose outcome is unknown. landed
// reports whether the remote already holds doc.
func (c *GitHub) settle(ctx context.Context, credential, location string, doc domain.Document) (current Token, landed bool, err error) {
	remoteDoc, current, err := c.Fetch(ctx, credential, location)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", false, nil
	case errors.Is(err, ErrMalformedContent):
		current, err = c.ProbeVersion(ctx, credential, location)
		return current, false, err
	case err != nil:
		return "", false, err
	}
	return current, remoteDoc.Equal(doc), nil
}

// outcomeUnknown reports whether a failed request may still have been applied.
func outcomeUnknown(err error) bool {
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindOther {
		return false
	}
	return rerr.Status == 0 || retryable(rerr.Status)
}

func statusOf(err error) int {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Status
	}
	return 0
}

func parseLocation(location string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(location), "/")
	if len(parts) != 2 || !locationPart.MatchString(parts[0]) || !locationPart.MatchString(parts[1]) {
		return "", "", fmt.Errorf("location %q is not owner/repo", location)
	}
	return parts[0], parts[1], nil
}

func (c *GitHub) contentsURL(op, location string, withRef bool) (string, error) {
	owner, repo, err := parseLocation(location)
	if err != nil {
		return "", newError(KindValidation, op, 0, err)
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, c.filename)
	if withRef && c.branch != "" {
		endpoint += "?ref=" + url.QueryEscape(c.branch)
	}
	return endpoint, nil
}

// do sends one request. Only GETs are repeated here; Store decides for itself
// whether a write may be sent again.
func (c *GitHub) do(ctx context.Context, op, method, endpoint, credential string, body, out any) error {
	maxRetries := c.maxRetries
	if method != http.MethodGet {
		maxRetries = 0
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return newError(KindOther, op, 0, err)
		}
	}

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return newError(KindValidation, op, 0, err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("User-Agent", c.userAgent)
		if credential != "" {
			req.Header.Set("Authorization", "Bearer "+credential)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() == nil && attempt < maxRetries && !isUnreachable(err) {
				if waitErr := waitWithContext(ctx, c.retryDelay(attempt+1, "")); waitErr != nil {
					return transportError(op, waitErr)
				}
				continue
			}
			return transportError(op, err)
		}
		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return transportError(op, readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			if out == nil || len(data) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return newError(KindMalformedContent, op, resp.StatusCode, err)
			}
			return nil
		}

		if retryable(resp.StatusCode) && attempt < maxRetries {
			delay := c.retryDelay(attempt+1, resp.Header.Get("Retry-After"))
			c.logger.Warn("remote request failed, retrying",
				logger.String("op", op),
				logger.Int("status", resp.StatusCode),
				logger.Int("attempt", attempt+1),
				logger.Duration("next_retry_in", delay))
			if waitErr := waitWithContext(ctx, delay); waitErr != nil {
				return transportError(op, waitErr)
			}
			continue
		}

		return newError(statusKind(resp.StatusCode), op, resp.StatusCode, errors.New(errorMessage(data, resp.Status)))
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func statusKind(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return KindConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindOther
	}
}

func errorMessage(data []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

func (c *GitHub) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	if retryAfter := parseRetryAfter(retryAfterHeader); retryAfter > 0 {
		return min(retryAfter, c.maxDelay)
	}
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	return min(delay, c.maxDelay)
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if ts, err := time.Parse(time.RFC1123, header); err == nil {
		if delta := time.Until(ts); delta > 0 {
			return delta
		}
	}
	return 0
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package cloudinary is a thin client for the Cloudinary upload API,
// implementing media.Host. Only the upload and destroy endpoints are
// used; transformations happen through URL parameters on the consumer
// side.
package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/merchkit/backoffice/internal/domain/media"
)

// DefaultBaseURL is the production Cloudinary API endpoint.
const DefaultBaseURL = "https://api.cloudinary.com"

const maxRetries = 3

var _ media.Host = (*Client)(nil)

// Client talks to a Cloudinary-compatible API. Requests are signed with
// the account secret; transient failures are retried with exponential
// backoff.
type Client struct {
	http    *http.Client
	baseURL string
	cloud   string
	apiKey  string
	secret  string
	folder  string
	now     func() time.Time
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string
	// CloudName identifies the Cloudinary account.
	CloudName string
	APIKey    string
	APISecret string
	// Folder is prepended to every uploaded asset's public ID.
	Folder string
	// HTTPClient overrides the transport. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client
}

// New returns a Client for the given account.
func New(opts Options) *Client {
	c := &Client{
		http:    opts.HTTPClient,
		baseURL: opts.BaseURL,
		cloud:   opts.CloudName,
		apiKey:  opts.APIKey,
		secret:  opts.APISecret,
		folder:  opts.Folder,
		now:     time.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload stores the payload, a base64 data URI, and returns its public
// URL. Server errors are retried up to three times; client errors fail
// immediately.
func (c *Client) Upload(ctx context.Context, data string) (string, error) {
	form := url.Values{
		"file":   {data},
		"folder": {c.folder},
	}
	var resp uploadResponse
	if err := c.post(ctx, "upload", form, &resp); err != nil {
		return "", errors.Wrap(err, "upload")
	}
	if resp.SecureURL == "" {
		return "", errors.Errorf("upload rejected: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

type destroyResponse struct {
	Result string `json:"result"`
}

// Delete removes an asset by public ID. A missing asset is not an
// error; the record it backed is gone either way.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	form := url.Values{
		"public_id": {publicID},
	}
	var resp destroyResponse
	if err := c.post(ctx, "destroy", form, &resp); err != nil {
		return errors.Wrap(err, "destroy")
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return errors.Errorf("destroy: unexpected result %q", resp.Result)
	}
	return nil
}

func (c *Client) post(ctx context.Context, action string, form url.Values, out any) error {
	c.sign(form)
	endpoint := fmt.Sprintf("%s/v1_1/%s/image/%s", c.baseURL, c.cloud, action)

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		if err != nil {
			return err
		}
		if res.StatusCode >= 500 {
			return errors.Errorf("media host: status %d", res.StatusCode)
		}
		if res.StatusCode >= 400 && res.StatusCode != http.StatusOK {
			err := errors.Errorf("media host: status %d: %s", res.StatusCode, body)
			return backoff.Permanent(err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(errors.Wrap(err, "decode response"))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(op, b)
}

// sign adds api_key, timestamp and signature fields per the Cloudinary
// signing scheme: sha1 over the sorted parameters, excluding the file
// payload and credentials, with the secret appended.
func (c *Client) sign(form url.Values) {
	form.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))

	keys := make([]string, 0, len(form))
	for k := range form {
		if k == "file" || k == "api_key" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+form.Get(k))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + c.secret))

	form.Set("api_key", c.apiKey)
	form.Set("signature", hex.EncodeToString(sum[:]))
}

// DeleteMany removes a batch of assets concurrently, bounded at four
// in-flight requests. The first failure is returned after all attempts
// finish; callers treat it as advisory since orphaned assets cost
// nothing but storage.
func DeleteMany(ctx context.Context, h media.Host, publicIDs []string) error {
	var g errgroup.Group
	g.SetLimit(4)
	for _, id := range publicIDs {
		id := id
		g.Go(func() error {
			return h.Delete(ctx, id)
		})
	}
	return g.Wait()
}

// PublicIDFromURL derives an asset's public ID from its delivery URL:
// the folder plus the final path segment without its extension.
func (c *Client) PublicIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if c.folder == "" {
		return base
	}
	return c.folder + "/" + base
}

package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"github.com/goccy/go-json"
)

// Client implements ports.NodeService against a gtox server.
type Client struct {
	base  string
	http  *http.Client
	depth int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithSnapshotDepth asks the server for a snapshot of the given depth.
func WithSnapshotDepth(depth int) ClientOption {
	return func(c *Client) {
		c.depth = depth
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Node calls GET /api/node/{id}.
func (c *Client) Node(ctx context.Context, sessionID string, addr domain.Address) (domain.TreeNode, error) {
	q := pathQuery(addr)
	var info gametree.NodeInfo
	if err := c.get(ctx, "/api/node/"+url.PathEscape(sessionID), q, &info); err != nil {
		return domain.TreeNode{}, err
	}
	return nodeFromInfo(info, addr)
}

// DirectNode calls GET /api/direct_node/{id} with the replayed actions.
func (c *Client) DirectNode(ctx context.Context, sessionID string, addr domain.Address, actions []string) (domain.TreeNode, error) {
	q := pathQuery(addr)
	if len(actions) > 0 {
		q.Set("actions", strings.Join(actions, ","))
	}
	var info gametree.NodeInfo
	if err := c.get(ctx, "/api/direct_node/"+url.PathEscape(sessionID), q, &info); err != nil {
		return domain.TreeNode{}, err
	}
	return nodeFromInfo(info, addr)
}

// Tree calls GET /api/tree/{id} and flattens the snapshot.
func (c *Client) Tree(ctx context.Context, sessionID string) (ports.TreeSnapshot, error) {
	q := url.Values{}
	if c.depth > 0 {
		q.Set("depth", strconv.Itoa(c.depth))
	}
	var snap gametree.SnapshotNode
	if err := c.get(ctx, "/api/tree/"+url.PathEscape(sessionID), q, &snap); err != nil {
		return ports.TreeSnapshot{}, err
	}
	nodes, err := snap.Nodes()
	if err != nil {
		return ports.TreeSnapshot{}, err
	}
	return ports.TreeSnapshot{Nodes: nodes}, nil
}

// pathQuery addresses addr. The root is sent without a path, which the
// server reads as the root.
func pathQuery(addr domain.Address) url.Values {
	q := url.Values{}
	if !addr.IsRoot() {
		q.Set("path", addr.String())
	}
	return q
}

// Strategy calls GET /api/strategy/{id}.
func (c *Client) Strategy(ctx context.Context, sessionID string, addr domain.Address) (gametree.StrategySummary, error) {
	var out gametree.StrategySummary
	err := c.get(ctx, "/api/strategy/"+url.PathEscape(sessionID), pathQuery(addr), &out)
	return out, err
}

// Upload posts a dataset and returns the new session.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResponse{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResponse{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/upload", &body)
	if err != nil {
		return UploadResponse{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	return out, c.do(req, &out)
}

// Delete calls DELETE /api/session/{id}.
func (c *Client) Delete(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/api/session/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return responseError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return nil
}

func responseError(status int, body []byte) error {
	var e ErrorResponse
	_ = json.Unmarshal(body, &e)
	msg := e.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch e.Code {
	case codeSessionNotFound:
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, msg)
	case codeNodeNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case codeBadAddress:
		return fmt.Errorf("%w: %s", domain.ErrMalformedAddress, msg)
	case codeBadPayload:
		return fmt.Errorf("%w: %s", domain.ErrMalformedPayload, msg)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	}
	return fmt.Errorf("server returned %d: %s", status, msg)
}

// nodeFromInfo converts a response and pins it to the requested address.
func nodeFromInfo(info gametree.NodeInfo, addr domain.Address) (domain.TreeNode, error) {
	n, err := info.TreeNode()
	if err != nil {
		return domain.TreeNode{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	n.Address = addr
	switch k := domain.KindOf(addr).(type) {
	case domain.DealGateKind:
		k.CardCount = info.DealCardsCount
		n.Kind = k
	default:
		n.Kind = k
	}
	return n, nil
}

package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kilianp07/cargo-agent/core/model"
	coresim "github.com/kilianp07/cargo-agent/core/sim"
	"github.com/kilianp07/cargo-agent/infra/logger"
)

// Config holds the connection parameters for the simulation server.
type Config struct {
	// BaseURL of the simulation server, e.g. https://localhost:7115.
	BaseURL string `json:"base_url"`
	// HopDelayMS is the settling wait before each move request.
	HopDelayMS int `json:"hop_delay_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.HopDelayMS <= 0 {
		c.HopDelayMS = 1000
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("sim base_url is required")
	}
	return nil
}

// Client implements core/sim.Gateway over the simulation server's HTTP
// surface. It holds no mutable state: the bearer token comes from the call
// context and every request is independent. No timeout is configured; a hung
// remote call blocks the order being processed, nothing else.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// NewClient creates a gateway client for the given server.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{},
		log:     logger.New("sim-client"),
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if token := coresim.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warnf("close response body: %v", cerr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &coresim.RemoteError{Operation: method + " " + path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// AcceptOrder transitions the remote order to accepted.
func (c *Client) AcceptOrder(ctx context.Context, orderID int) error {
	q := url.Values{"orderId": {strconv.Itoa(orderID)}}
	_, err := c.do(ctx, http.MethodPost, "/Order/Accept", q)
	return err
}

// GetTransporter fetches the transporter's current state.
func (c *Client) GetTransporter(ctx context.Context, transporterID int) (model.CargoTransporter, error) {
	q := url.Values{"transporterId": {strconv.Itoa(transporterID)}}
	body, err := c.do(ctx, http.MethodGet, "/CargoTransporter/Get", q)
	if err != nil {
		return model.CargoTransporter{}, err
	}
	var t model.CargoTransporter
	if err := json.Unmarshal(body, &t); err != nil {
		return model.CargoTransporter{}, fmt.Errorf("decode transporter: %w", err)
	}
	return t, nil
}

// MoveTransporter issues one hop toward targetNodeID.
func (c *Client) MoveTransporter(ctx context.Context, transporterID, targetNodeID int) error {
	q := url.Values{
		"transporterId": {strconv.Itoa(transporterID)},
		"targetNodeId":  {strconv.Itoa(targetNodeID)},
	}
	_, err := c.do(ctx, http.MethodPut, "/CargoTransporter/Move", q)
	return err
}

// GetGrid fetches and leniently decodes a fresh grid snapshot.
func (c *Client) GetGrid(ctx context.Context) (model.Grid, error) {
	body, err := c.do(ctx, http.MethodGet, "/Grid/Get", nil)
	if err != nil {
		return model.Grid{}, err
	}
	grid, err := decodeGrid(body, c.log)
	if err != nil {
		return model.Grid{}, err
	}
	c.log.Infof("grid fetched: %d nodes, %d edges, %d connections",
		len(grid.Nodes), len(grid.Edges), len(grid.Connections))
	return grid, nil
}

// BuyTransporter purchases a transporter at positionNodeID and returns its id.
func (c *Client) BuyTransporter(ctx context.Context, positionNodeID int) (int, error) {
	q := url.Values{"positionNodeId": {strconv.Itoa(positionNodeID)}}
	body, err := c.do(ctx, http.MethodPost, "/CargoTransporter/Buy", q)
	if err != nil {
		return 0, err
	}
	return decodeTransporterID(body)
}

// CreateOrders asks the server to generate the initial batch of orders.
func (c *Client) CreateOrders(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/Order/Create", nil)
	return err
}

// StartSimulation starts the remote simulation.
func (c *Client) StartSimulation(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/Sim/Start", nil)
	return err
}

// StopSimulation stops the remote simulation.
func (c *Client) StopSimulation(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/Sim/Stop", nil)
	return err
}

// decodeTransporterID accepts either a bare integer body or an object
// carrying an id field.
func decodeTransporterID(body []byte) (int, error) {
	var id int
	if err := json.Unmarshal(body, &id); err == nil {
		return id, nil
	}
	var obj struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return 0, fmt.Errorf("decode transporter id: %w", err)
	}
	return obj.ID, nil
}

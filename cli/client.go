package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles API requests to the storage map API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	AuthToken  string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("LARDER_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL:   baseURL,
		AuthToken: os.Getenv("LARDER_API_TOKEN"),
	}

	if !client.ping() {
		fmt.Printf("Warning: API server at %s is not available.\n", baseURL)
	}

	return client
}

// ping checks if the API server is available
func (c *ApiClient) ping() bool {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Storable represents a catalog entry (ingredient or preparation)
type Storable struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Unit      string `json:"unit,omitempty"`
	Category  string `json:"category,omitempty"`
	Storage   string `json:"storage"`
	ShelfDays int    `json:"shelf_days,omitempty"`
}

// StockItem represents a physical unit of stock
type StockItem struct {
	ID         string     `json:"id"`
	StorableID string     `json:"storable_id"`
	Quantity   float64    `json:"quantity"`
	ReceivedAt time.Time  `json:"received_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LocationID string     `json:"location_id,omitempty"`
}

// Location represents a storage location
type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity,omitempty"`
}

// Warning represents an inventory warning
type Warning struct {
	Kind        string `json:"kind"`
	StockItemID string `json:"stock_item_id"`
	StorableID  string `json:"storable_id"`
	LocationID  string `json:"location_id,omitempty"`
	Message     string `json:"message"`
}

// MoveResult is the outcome of a placement move
type MoveResult struct {
	Item            StockItem `json:"item"`
	StorageMismatch bool      `json:"storage_mismatch"`
}

// GetStorables retrieves the catalog
func (c *ApiClient) GetStorables() ([]Storable, error) {
	var out []Storable
	if err := c.getJSON("/api/v1/storables", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStock retrieves all stock items
func (c *ApiClient) GetStock() ([]StockItem, error) {
	var out []StockItem
	if err := c.getJSON("/api/v1/stock", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLocations retrieves all storage locations
func (c *ApiClient) GetLocations() ([]Location, error) {
	var out []Location
	if err := c.getJSON("/api/v1/locations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOccupancy retrieves the current occupancy of a location
func (c *ApiClient) GetOccupancy(locationID string) (int, error) {
	var out struct {
		Occupancy int `json:"occupancy"`
	}
	if err := c.getJSON("/api/v1/locations/"+locationID+"/occupancy", &out); err != nil {
		return 0, err
	}
	return out.Occupancy, nil
}

// GetAlerts retrieves current inventory warnings
func (c *ApiClient) GetAlerts() ([]Warning, error) {
	var out []Warning
	if err := c.getJSON("/api/v1/alerts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search runs a free-text search over catalog and stock
func (c *ApiClient) Search(query string) ([]Storable, []StockItem, error) {
	var out struct {
		Storables []Storable  `json:"storables"`
		Stock     []StockItem `json:"stock"`
	}
	if err := c.getJSON("/api/v1/search?q="+query, &out); err != nil {
		return nil, nil, err
	}
	return out.Storables, out.Stock, nil
}

// MoveStock assigns a stock item to a location; an empty location unplaces it
func (c *ApiClient) MoveStock(stockItemID, locationID string) (*MoveResult, error) {
	body, _ := json.Marshal(map[string]string{"location_id": locationID})
	req, err := http.NewRequest("POST", c.BaseURL+"/api/v1/stock/"+stockItemID+"/placement", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result MoveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ApiClient) getJSON(path string, out interface{}) error {
	resp, err := c.httpClient.Get(c.BaseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return fmt.Errorf("%s", body.Error)
	}
	return fmt.Errorf("request failed with status code: %d", resp.StatusCode)
}

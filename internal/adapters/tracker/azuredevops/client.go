// Package azuredevops imports work items from an Azure DevOps project.
package azuredevops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"go.uber.org/zap"
)

const (
	apiVersion       = "7.0"
	defaultBatchSize = 200
	defaultItemType  = "Feature"
)

type Config struct {
	// BaseURL is the organization URL, e.g. https://dev.azure.com/acme.
	BaseURL      string
	Project      string
	Token        string
	WorkItemType string
	BatchSize    int
	HTTPClient   *http.Client
}

type Client struct {
	baseURL   string
	project   string
	token     string
	itemType  string
	batchSize int
	http      *http.Client
	log       *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.Project) == "" {
		return nil, errors.New("tracker base url and project are required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		project:   strings.TrimSpace(cfg.Project),
		token:     strings.TrimSpace(cfg.Token),
		itemType:  cfg.WorkItemType,
		batchSize: cfg.BatchSize,
		http:      cfg.HTTPClient,
		log:       log.Named("azuredevops"),
	}
	if c.itemType == "" {
		c.itemType = defaultItemType
	}
	if c.batchSize <= 0 || c.batchSize > defaultBatchSize {
		c.batchSize = defaultBatchSize
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	return c, nil
}

type wiqlRequest struct {
	Query string `json:"query"`
}

type wiqlResponse struct {
	WorkItems []struct {
		ID int `json:"id"`
	} `json:"workItems"`
}

type workItemsResponse struct {
	Value []workItem `json:"value"`
}

type workItem struct {
	ID     int `json:"id"`
	Fields struct {
		Title       string `json:"System.Title"`
		Description string `json:"System.Description"`
		Tags        string `json:"System.Tags"`
	} `json:"fields"`
}

// FetchWorkItems returns every work item of the configured type in the
// project. Any transport or decode failure aborts the whole fetch.
func (c *Client) FetchWorkItems(ctx context.Context) ([]domain.ExternalFeature, error) {
	ids, err := c.queryIDs(ctx)
	if err != nil {
		return nil, err
	}

	features := make([]domain.ExternalFeature, 0, len(ids))
	for start := 0; start < len(ids); start += c.batchSize {
		end := min(start+c.batchSize, len(ids))
		items, err := c.getBatch(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			features = append(features, c.toExternal(item))
		}
	}

	c.log.Info("fetched work items", zap.String("project", c.project), zap.Int("count", len(features)))
	return features, nil
}

func (c *Client) queryIDs(ctx context.Context) ([]int, error) {
	query := fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = @project AND [System.WorkItemType] = '%s' AND [System.State] <> 'Removed' ORDER BY [System.Id]",
		strings.ReplaceAll(c.itemType, "'", "''"),
	)
	body, err := json.Marshal(wiqlRequest{Query: query})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/_apis/wit/wiql?api-version=%s", c.baseURL, url.PathEscape(c.project), apiVersion)
	var resp wiqlResponse
	if err := c.do(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, fmt.Errorf("wiql query: %w", err)
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, wi := range resp.WorkItems {
		ids = append(ids, wi.ID)
	}
	return ids, nil
}

func (c *Client) getBatch(ctx context.Context, ids []int) ([]workItem, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	params := url.Values{}
	params.Set("ids", strings.Join(parts, ","))
	params.Set("fields", "System.Id,System.Title,System.Description,System.Tags")
	params.Set("api-version", apiVersion)

	endpoint := fmt.Sprintf("%s/%s/_apis/wit/workitems?%s", c.baseURL, url.PathEscape(c.project), params.Encode())
	var resp workItemsResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("get work items: %w", err)
	}
	return resp.Value, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		// personal access tokens go in the password slot
		req.SetBasicAuth("", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) toExternal(item workItem) domain.ExternalFeature {
	id := strconv.Itoa(item.ID)
	return domain.ExternalFeature{
		ExternalID:  id,
		Title:       item.Fields.Title,
		Description: item.Fields.Description,
		Epic:        domain.EpicFromTags(item.Fields.Tags),
		URL:         fmt.Sprintf("%s/%s/_workitems/edit/%s", c.baseURL, url.PathEscape(c.project), id),
	}
}

package skadnetwork

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchregexp"
)

// Record is one network's entry in the SKAdNetwork endpoint's response.
type Record struct {
	Name string   `json:"name,omitempty"`
	IDs  []string `json:"ids"`
}

type Client struct {
	HTTPClient *http.Client
	URL        *url.URL
}

func (c *Client) init() error {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.URL == nil {
		var err error
		c.URL, err = url.Parse(adpatch.DefaultSKAdNetworkURL)
		return err
	}
	return nil
}

// Get fetches every network's SKAdNetwork identifiers, flattened in
// response order with empty and repeated identifiers dropped.
// It has no timeout of its own; ctx bounds it.
func (c *Client) Get(ctx context.Context) ([]string, error) {
	if err := c.init(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		if msg := errorMessage(body); msg != "" {
			return nil, fmt.Errorf("http status code %d: %s", res.StatusCode, msg)
		}

		return nil, fmt.Errorf("http status code %d", res.StatusCode)
	}

	if msg := errorMessage(body); msg != "" {
		return nil, fmt.Errorf("skadnetwork: %s", msg)
	}

	records := []Record{}
	if err = json.NewDecoder(bytes.NewReader(body)).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode skadnetwork response: %w", err)
	}

	log := adpatch.LoggerFrom(ctx)
	ids := []string{}
	for _, record := range records {
		for _, id := range record.IDs {
			if id != "" && !adpatchregexp.IsSKAdNetworkIdentifier(id) {
				log.V(1).Info("unusual SKAdNetwork identifier", "id", id, "network", record.Name)
			}
		}

		ids = Dedupe(ids, record.IDs)
	}

	return ids, nil
}

func errorMessage(body []byte) string {
	obj := map[string]any{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}

	if v, ok := obj["error"]; ok && v != nil {
		return fmt.Sprint(v)
	}

	return ""
}

// Dedupe concatenates lists, dropping empty strings and
// every occurrence of a string after its first.
func Dedupe(lists ...[]string) []string {
	var (
		seen = map[string]bool{}
		out  = []string{}
	)

	for _, list := range lists {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}

			seen[s] = true
			out = append(out, s)
		}
	}

	return out
}

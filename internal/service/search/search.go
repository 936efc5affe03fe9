package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/vlasenko/contacts_api/internal/models"
)

// Search runs a fuzzy multi-field query over the contacts index, scoped to
// one owner.
func Search(ctx context.Context, es *elasticsearch.Client, index string, userID uint, query string, from, size int) (int64, []models.Contact, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"name^2", "lastname^2", "email", "note"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search encode: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Contact `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search decode: %w", err)
	}

	contacts := make([]models.Contact, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		contacts[i] = hit.Source
	}
	return r.Hits.Total.Value, contacts, nil
}

// Index writes one contact document keyed by its row id.
func Index(ctx context.Context, es *elasticsearch.Client, index string, contact *models.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("index encode: %w", err)
	}
	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(contact.ID), 10)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index: %s", res.Status())
	}
	return nil
}

// Remove deletes one contact document; a missing document is not an error.
func Remove(ctx context.Context, es *elasticsearch.Client, index string, contactID uint) error {
	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(contactID), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete: %s", res.Status())
	}
	return nil
}

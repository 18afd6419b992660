package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
	"github.com/oksasatya/user-accounts-service/internal/domain/repository"
)

const requestTimeout = 3 * time.Second

// UserDirectory indexes the public user fields into Elasticsearch.
// Documents are the JSON form of entity.User, which never carries the password.
type UserDirectory struct {
	es    *elasticsearch.Client
	index string
}

func NewUserDirectory(es *elasticsearch.Client, index string) *UserDirectory {
	return &UserDirectory{es: es, index: index}
}

func docID(id int64) string { return strconv.FormatInt(id, 10) }

func (d *UserDirectory) Index(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: d.index, DocumentID: docID(u.ID), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, d.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (d *UserDirectory) Remove(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: d.index, DocumentID: docID(id)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, d.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search matches q against username, branch and role. An empty q lists
// the first size documents.
func (d *UserDirectory) Search(ctx context.Context, q string, size int) ([]entity.User, error) {
	query := map[string]any{"match_all": map[string]any{}}
	if q != "" {
		query = map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "branch", "role"},
			},
		}
	}
	b, err := json.Marshal(map[string]any{"query": query, "size": size})
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := d.es.Search(
		d.es.Search.WithContext(c),
		d.es.Search.WithIndex(d.index),
		d.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return []entity.User{}, nil
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source entity.User `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ repository.UserDirectory = (*UserDirectory)(nil)

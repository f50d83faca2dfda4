package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
)

type Index interface {
	IndexProperty(ctx context.Context, p *models.Property) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error
	SearchProperties(ctx context.Context, q string, from, size int) (int64, []uuid.UUID, error)
}

type ESIndex struct {
	ES    *elasticsearch.Client
	Index string
}

type propertyDoc struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	PricePerNight int64  `json:"price_per_night"`
}

func (s *ESIndex) IndexProperty(ctx context.Context, p *models.Property) error {
	body, err := json.Marshal(propertyDoc{
		ID:            p.ID.String(),
		OwnerID:       p.OwnerID.String(),
		Title:         p.Title,
		Description:   p.Description,
		Location:      p.Location,
		PricePerNight: p.PricePerNight,
	})
	if err != nil {
		return err
	}

	res, err := s.ES.Index(s.Index, bytes.NewReader(body),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index property: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseErr("index property", res.Status(), res.Body)
	}
	return nil
}

func (s *ESIndex) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	res, err := s.ES.Delete(s.Index, id.String(), s.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseErr("delete property", res.Status(), res.Body)
	}
	return nil
}

func (s *ESIndex) SearchProperties(ctx context.Context, q string, from, size int) (int64, []uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"title^2", "location^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search properties: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseErr("search properties", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source propertyDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := uuid.Parse(h.Source.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

func responseErr(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 4096))
	return fmt.Errorf("%s: elasticsearch %s: %s", op, status, strings.TrimSpace(string(b)))
}

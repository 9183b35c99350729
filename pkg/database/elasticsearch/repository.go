package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/goccy/go-json"

	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/database"
	"github.com/huynhanx03/go-crud/pkg/dto"
)

// Repository stores T as documents of one index, using the formatted entity key as _id.
type Repository[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	transport esapi.Transport
	index     string
	refresh   string
}

// NewRepository binds a Repository to index. Writes refresh the index so reads see them at once.
func NewRepository[T any, PT crud.Entity[T, K], K constraints.ID](transport esapi.Transport, index string) *Repository[T, PT, K] {
	return &Repository[T, PT, K]{transport: transport, index: index, refresh: "true"}
}

func (r *Repository[T, PT, K]) put(ctx context.Context, doc *T, opType string) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMarshalFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: constraints.FormatID(PT(doc).GetID()),
		Body:       bytes.NewReader(body),
		OpType:     opType,
		Refresh:    r.refresh,
	}

	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexRequestFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusConflict && opType == "create" {
		return fmt.Errorf("%w: %s", database.ErrDuplicateKey, req.DocumentID)
	}
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexRequestFailed, res.Status())
	}
	return nil
}

// Create inserts a new document and fails on an existing _id.
func (r *Repository[T, PT, K]) Create(ctx context.Context, doc *T) error {
	return r.put(ctx, doc, "create")
}

// Update replaces an existing document.
func (r *Repository[T, PT, K]) Update(ctx context.Context, doc *T) error {
	ok, err := r.Exists(ctx, PT(doc).GetID())
	if err != nil {
		return err
	}
	if !ok {
		return database.ErrNotFound
	}
	return r.put(ctx, doc, "index")
}

func (r *Repository[T, PT, K]) Get(ctx context.Context, id K) (*T, error) {
	req := esapi.GetRequest{
		Index:      r.index,
		DocumentID: constraints.FormatID(id),
	}

	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGetRequestFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, database.ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrGetRequestFailed, res.Status())
	}

	var response struct {
		Source T `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	PT(&response.Source).SetID(id)
	return &response.Source, nil
}

func (r *Repository[T, PT, K]) Delete(ctx context.Context, id K) error {
	req := esapi.DeleteRequest{
		Index:      r.index,
		DocumentID: constraints.FormatID(id),
		Refresh:    r.refresh,
	}

	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteRequestFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return database.ErrNotFound
	}
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrDeleteRequestFailed, res.Status())
	}
	return nil
}

func (r *Repository[T, PT, K]) Exists(ctx context.Context, id K) (bool, error) {
	req := esapi.ExistsRequest{
		Index:      r.index,
		DocumentID: constraints.FormatID(id),
	}

	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrGetRequestFailed, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrGetRequestFailed, res.Status())
	}
}

type searchResponse[T any] struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string `json:"_id"`
			Source T      `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Find retrieves one page of documents with search/filter and sorting.
func (r *Repository[T, PT, K]) Find(ctx context.Context, opts *dto.QueryOptions) (*dto.Paginated[*T], error) {
	if opts == nil {
		opts = &dto.QueryOptions{}
	}
	if opts.Pagination == nil {
		opts.Pagination = &dto.PaginationOptions{}
	}
	opts.Pagination.SetDefaults()

	query, err := json.Marshal(newSearchBody(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarshalFailed, err)
	}

	req := esapi.SearchRequest{
		Index:          []string{r.index},
		Body:           bytes.NewReader(query),
		TrackTotalHits: true,
	}
	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchRequestFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchRequestFailed, res.Status())
	}

	var response searchResponse[T]
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	records := make([]*T, len(response.Hits.Hits))
	for i := range response.Hits.Hits {
		item := response.Hits.Hits[i].Source
		if id, err := constraints.ParseID[K](response.Hits.Hits[i].ID); err == nil {
			PT(&item).SetID(id)
		}
		records[i] = &item
	}

	return &dto.Paginated[*T]{
		Records:    &records,
		Pagination: dto.CalculatePagination(opts.Pagination.Page, opts.Pagination.PageSize, response.Hits.Total.Value),
	}, nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
}

func (r *Repository[T, PT, K]) bulk(ctx context.Context, body *bytes.Buffer, failed error) error {
	req := esapi.BulkRequest{
		Body:    bytes.NewReader(body.Bytes()),
		Refresh: r.refresh,
	}
	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return fmt.Errorf("%w: %v", failed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", failed, res.Status())
	}
	var response bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if response.Errors {
		return ErrBulkItemsFailed
	}
	return nil
}

type bulkMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// BatchCreate inserts multiple documents using the Bulk API.
func (r *Repository[T, PT, K]) BatchCreate(ctx context.Context, docs []*T) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		meta := map[string]bulkMeta{"create": {Index: r.index, ID: constraints.FormatID(PT(doc).GetID())}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("%w: %v", ErrMarshalFailed, err)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("%w: %v", ErrMarshalFailed, err)
		}
	}
	return r.bulk(ctx, &buf, ErrIndexRequestFailed)
}

// BatchDelete deletes multiple documents using the Bulk API.
func (r *Repository[T, PT, K]) BatchDelete(ctx context.Context, ids []K) error {
	if len(ids) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, id := range ids {
		meta := map[string]bulkMeta{"delete": {Index: r.index, ID: constraints.FormatID(id)}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("%w: %v", ErrMarshalFailed, err)
		}
	}
	return r.bulk(ctx, &buf, ErrDeleteRequestFailed)
}

package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // collection path -> documents
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
		now:  time.Now,
	}
}

// Create stores doc under a fresh id and the current time.
func (r *MemoryRepo) Create(ctx context.Context, ns Namespace, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	doc.ID = uuid.NewString()
	doc.CreatedAt = r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	key := ns.CollectionPath()
	r.data[key] = append(r.data[key], doc)
	return doc, nil
}

// List returns the namespace's documents, newest first.
func (r *MemoryRepo) List(ctx context.Context, ns Namespace) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]Document, len(r.data[ns.CollectionPath()]))
	copy(docs, r.data[ns.CollectionPath()])
	r.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// Get returns a document by id.
func (r *MemoryRepo) Get(ctx context.Context, ns Namespace, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.data[ns.CollectionPath()] {
		if doc.ID == id {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

// Delete removes a document by id.
func (r *MemoryRepo) Delete(ctx context.Context, ns Namespace, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ns.CollectionPath()
	docs := r.data[key]
	for i := range docs {
		if docs[i].ID == id {
			r.data[key] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)

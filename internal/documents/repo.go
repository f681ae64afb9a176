package documents

import "context"

// Repo persists document records inside a namespace. Create assigns ID and
// CreatedAt. List returns newest first. Get and Delete report ErrNotFound for
// ids outside the namespace.
type Repo interface {
	Create(ctx context.Context, ns Namespace, doc Document) (Document, error)
	List(ctx context.Context, ns Namespace) ([]Document, error)
	Get(ctx context.Context, ns Namespace, id string) (Document, error)
	Delete(ctx context.Context, ns Namespace, id string) error
}

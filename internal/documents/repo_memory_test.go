package documents

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoListsNewestFirstPerNamespace(t *testing.T) {
	repo := NewMemoryRepo()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	ctx := context.Background()
	alice := Namespace{AppID: "app", UserID: "alice"}
	bob := Namespace{AppID: "app", UserID: "bob"}

	first, _ := repo.Create(ctx, alice, Document{Name: "first"})
	second, _ := repo.Create(ctx, alice, Document{Name: "second"})
	if _, err := repo.Create(ctx, bob, Document{Name: "bobs"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	docs, err := repo.List(ctx, alice)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != second.ID || docs[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", docs)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct ids")
	}
}

func TestMemoryRepoSeparatesSanitizedAliases(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	owner := Namespace{AppID: "app", UserID: "alice/x"}

	doc, err := repo.Create(ctx, owner, Document{Name: "secret.txt", DigitalCopyText: "alice's labs"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, id := range []string{"alice_x", "alice x", "alice:x"} {
		alias := Namespace{AppID: "app", UserID: id}
		docs, err := repo.List(ctx, alias)
		if err != nil {
			t.Fatalf("List(%q): %v", id, err)
		}
		if len(docs) != 0 {
			t.Fatalf("%q listed %d documents of alice/x", id, len(docs))
		}
		if _, err := repo.Get(ctx, alias, doc.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%q read alice/x document: %v", id, err)
		}
		if err := repo.Delete(ctx, alias, doc.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%q deleted alice/x document: %v", id, err)
		}
	}
	if _, err := repo.Get(ctx, owner, doc.ID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
}

func TestMemoryRepoGetAndDelete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	ns := Namespace{AppID: "app", UserID: "alice"}
	doc, _ := repo.Create(ctx, ns, Document{Name: "a"})

	if _, err := repo.Get(ctx, Namespace{AppID: "app", UserID: "bob"}, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across namespaces, got %v", err)
	}
	if err := repo.Delete(ctx, ns, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, ns, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, ns, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryRepoHonorsCanceledContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.Create(ctx, Namespace{}, Document{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

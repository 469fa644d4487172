package corpus

import (
	"errors"
	"path/filepath"
	"testing"
)

func testItems() []Item {
	return []Item{
		{ID: 0, Topic: "animals", Text: "Кот и мышь", Tokens: []string{"кот", "мыш"}},
		{ID: 1, Topic: "work", Text: "Начальник в отпуске"},
		{ID: 2, Topic: "animals", Text: "Собака лает"},
	}
}

func TestMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.bolt")
	if err := CreateMap(path, "run-1", testItems()); err != nil {
		t.Fatalf("CreateMap failed: %v", err)
	}
	m, err := OpenMap(path)
	if err != nil {
		t.Fatalf("OpenMap failed: %v", err)
	}
	defer m.Close()
	if m.Len() != 3 || m.RunID() != "run-1" {
		t.Fatalf("Len/RunID = %d/%q", m.Len(), m.RunID())
	}
	item, err := m.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item.Text != "Начальник в отпуске" || item.Topic != "work" {
		t.Fatalf("Get(1) = %+v", item)
	}
	if _, err := m.Get(3); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("Get(3) err = %v, want ErrItemNotFound", err)
	}
	if err := m.Verify(3); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if err := m.Verify(4); err == nil {
		t.Fatalf("Verify(4) must fail")
	}
}

func TestCreateMap_RejectsSparseIDs(t *testing.T) {
	items := testItems()
	items[1].ID = 5
	if err := CreateMap(filepath.Join(t.TempDir(), "items.bolt"), "run", items); err == nil {
		t.Fatalf("expected error for non-dense ids")
	}
}

func TestOpenMap_Missing(t *testing.T) {
	if _, err := OpenMap(filepath.Join(t.TempDir(), "absent.bolt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

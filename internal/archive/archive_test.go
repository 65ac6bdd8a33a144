package archive

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/suykerbuyk/carenotes/internal/note"
)

func testNotes() []note.CareNote {
	return []note.CareNote{
		{
			ID: "a1", Date: "01/02/2026", Time: "10:00", Patient: "Ann",
			VisitType: note.VisitStandard, RawContent: "Ann was well.",
			CreatedAt: "2026-02-01T10:00:00.000Z", UpdatedAt: "2026-02-01T10:00:00.000Z",
		},
		{
			ID: "b2", Date: "02/02/2026", Time: "11:15", Patient: "Ben",
			VisitType: note.VisitTherapy, RawContent: "Walked with Ben.",
			EnhancedContent: &note.EnhancedNote{PatientName: "Ben", PatientStatus: "<ul><li>Calm</li></ul>"},
			TemplateType:    "enhanced",
			CreatedAt:       "2026-02-02T11:15:00.000Z", UpdatedAt: "2026-02-02T11:20:00.000Z",
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, name := range []string{"notes.json", "notes.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			if err := Export(testNotes(), path); err != nil {
				t.Fatalf("Export: %v", err)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Errorf("temp file left behind")
			}

			got, err := Import(path)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if !reflect.DeepEqual(got, testNotes()) {
				t.Errorf("round trip mismatch\ngot:  %+v\nwant: %+v", got, testNotes())
			}
		})
	}
}

func TestExport_CompressedIsNotPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json.zst")
	if err := Export(testNotes(), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[0] == '[' {
		t.Errorf("expected zstd frame, got %q", data[:min(len(data), 16)])
	}
}

func TestExport_EmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := Export(nil, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "[]\n" {
		t.Errorf("content = %q, want []", data)
	}
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Import(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, err := Import(bad); err == nil {
		t.Error("expected decode error")
	}

	noID := filepath.Join(dir, "noid.json")
	os.WriteFile(noID, []byte(`[{"id":"x"},{"patient":"Ann"}]`), 0o644)
	_, err := Import(noID)
	if !errors.Is(err, note.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestMerge(t *testing.T) {
	existing := testNotes()
	incoming := []note.CareNote{
		{ID: "b2", Patient: "Ben B."},
		{ID: "c3", Patient: "Cat"},
	}

	merged, added, updated := Merge(existing, incoming)
	if added != 1 || updated != 1 {
		t.Errorf("added=%d updated=%d, want 1/1", added, updated)
	}
	var ids []string
	for _, n := range merged {
		ids = append(ids, n.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a1", "b2", "c3"}) {
		t.Errorf("ids = %v", ids)
	}
	if merged[1].Patient != "Ben B." {
		t.Errorf("b2 not replaced: %+v", merged[1])
	}
}

func TestCompressed(t *testing.T) {
	if !Compressed("x.json.zst") || Compressed("x.json") {
		t.Error("Compressed misclassified")
	}
}

package docwriter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"journalimport/internal/docmodel"
	"journalimport/internal/services"
)

func sampleDocument() *docmodel.Document {
	anchor := docmodel.NewNode(docmodel.RoleAnchor, "Periodical")
	volume := docmodel.NewNode(docmodel.RoleVolume, "PeriodicalVolume")
	issue := docmodel.NewNode(docmodel.RoleIssue, "PeriodicalIssue")
	issue.AddMetadata("TitleDocMain", "Supplement")
	anchor.AddChild(volume)
	volume.AddChild(issue)

	physical := docmodel.NewNode(docmodel.RolePhysical, "BoundBook")
	for i, name := range []string{"0001.tif", "Supplement_0001.tif"} {
		page := docmodel.NewNode(docmodel.RolePage, "page")
		page.PhysicalOrder = i + 1
		page.ImageName = name
		physical.AddChild(page)
		volume.AddReference(docmodel.ReferenceLogicalPhysical, page)
	}
	issue.AddReference(docmodel.ReferenceLogicalPhysical, physical.Children[1])
	return &docmodel.Document{Logical: anchor, Physical: physical}
}

func TestJSONWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import", "170621391_1925"+Extension)
	if err := NewJSONWriter().Write(sampleDocument(), path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if file.Logical.ID != "LOG_0000" || file.Physical.ID != "PHYS_0000" {
		t.Fatalf("unexpected root ids %q %q", file.Logical.ID, file.Physical.ID)
	}
	volume := file.Logical.Children[0]
	if volume.ID != "LOG_0001" || volume.Children[0].ID != "LOG_0002" {
		t.Fatalf("unexpected logical ids %q %q", volume.ID, volume.Children[0].ID)
	}
	if len(volume.References) != 2 || volume.References[0].Target != "PHYS_0001" || volume.References[1].Target != "PHYS_0002" {
		t.Fatalf("unexpected volume references %+v", volume.References)
	}
	issue := volume.Children[0]
	if len(issue.References) != 1 || issue.References[0].Target != "PHYS_0002" {
		t.Fatalf("unexpected issue references %+v", issue.References)
	}
	page := file.Physical.Children[1]
	if page.Order != 2 || page.Image != "Supplement_0001.tif" || page.Role != docmodel.RolePage {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestEncodeRejectsForeignReference(t *testing.T) {
	doc := sampleDocument()
	doc.Logical.AddReference(docmodel.ReferenceLogicalPhysical, docmodel.NewNode(docmodel.RolePage, "page"))
	if _, err := Encode(doc); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestEncodeRejectsIncompleteDocument(t *testing.T) {
	if _, err := Encode(&docmodel.Document{Logical: docmodel.NewNode(docmodel.RoleAnchor, "Periodical")}); err == nil {
		t.Fatal("expected error for missing physical root")
	}
}

func TestJSONWriterWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := NewJSONWriter().Write(sampleDocument(), filepath.Join(blocker, "doc.json"))
	if !errors.Is(err, services.ErrFileIO) {
		t.Fatalf("expected ErrFileIO, got %v", err)
	}
}

package docwriter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"journalimport/internal/docmodel"
	"journalimport/internal/fileutil"
	"journalimport/internal/services"
)

// Extension is appended to process titles to name document files.
const Extension = ".json"

// Writer persists a document tree.
type Writer interface {
	Write(doc *docmodel.Document, path string) error
}

// File is the serialised document.
type File struct {
	Logical  *FileNode `json:"logical"`
	Physical *FileNode `json:"physical"`
}

// FileNode is a serialised node.
type FileNode struct {
	ID         string              `json:"id"`
	Role       docmodel.Role       `json:"role"`
	Type       string              `json:"type"`
	Metadata   []docmodel.Metadata `json:"metadata,omitempty"`
	Order      int                 `json:"order,omitempty"`
	Image      string              `json:"image,omitempty"`
	References []FileReference     `json:"references,omitempty"`
	Children   []*FileNode         `json:"children,omitempty"`
}

// FileReference is a serialised reference.
type FileReference struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// JSONWriter writes indented JSON atomically.
type JSONWriter struct{}

// NewJSONWriter returns a JSONWriter.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

// Write implements Writer.
func (w *JSONWriter) Write(doc *docmodel.Document, path string) error {
	file, err := Encode(doc)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrFileIO, "docwriter", "marshal", path, err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrFileIO, "docwriter", "create directory", path, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrFileIO, "docwriter", "write", path, err)
	}
	return nil
}

// Encode converts doc into its serialised form.
func Encode(doc *docmodel.Document) (*File, error) {
	if doc == nil || doc.Logical == nil || doc.Physical == nil {
		return nil, services.Wrap(services.ErrValidation, "docwriter", "encode", "document needs a logical and a physical root", nil)
	}
	ids := make(map[*docmodel.Node]string)
	counter := 0
	assign := func(n *docmodel.Node, prefix string) {
		ids[n] = fmt.Sprintf("%s_%04d", prefix, counter)
		counter++
	}
	walk(doc.Physical, func(n *docmodel.Node) { assign(n, "PHYS") })
	counter = 0
	walk(doc.Logical, func(n *docmodel.Node) { assign(n, "LOG") })

	logical, err := encodeNode(doc.Logical, ids)
	if err != nil {
		return nil, err
	}
	physical, err := encodeNode(doc.Physical, ids)
	if err != nil {
		return nil, err
	}
	return &File{Logical: logical, Physical: physical}, nil
}

func walk(n *docmodel.Node, visit func(*docmodel.Node)) {
	visit(n)
	for _, child := range n.Children {
		walk(child, visit)
	}
}

func encodeNode(n *docmodel.Node, ids map[*docmodel.Node]string) (*FileNode, error) {
	out := &FileNode{
		ID:       ids[n],
		Role:     n.Role,
		Type:     n.Type,
		Metadata: n.Metadata,
		Order:    n.PhysicalOrder,
		Image:    n.ImageName,
	}
	for _, ref := range n.References {
		target, ok := ids[ref.Target]
		if !ok {
			return nil, services.Wrap(
				services.ErrValidation,
				"docwriter",
				"encode",
				fmt.Sprintf("%s references a node outside the document", out.ID),
				nil,
			)
		}
		out.References = append(out.References, FileReference{Type: ref.Type, Target: target})
	}
	for _, child := range n.Children {
		encoded, err := encodeNode(child, ids)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, encoded)
	}
	return out, nil
}

package docmodel

import (
	"fmt"

	"journalimport/internal/services"
)

// Role tags the position of a node in the document.
type Role string

const (
	RoleAnchor   Role = "anchor"
	RoleVolume   Role = "volume"
	RoleIssue    Role = "issue"
	RolePage     Role = "page"
	RolePhysical Role = "physical"
)

// ReferenceLogicalPhysical links a logical unit to one of its pages.
const ReferenceLogicalPhysical = "logical_physical"

// Metadata is one typed value. A type may repeat on a node.
type Metadata struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Reference is a named edge to another node.
type Reference struct {
	Type   string
	Target *Node
}

// Node is an element of the logical or physical tree. ImageName and
// PhysicalOrder are only meaningful on pages.
type Node struct {
	Role          Role
	Type          string
	Metadata      []Metadata
	Children      []*Node
	References    []Reference
	ImageName     string
	PhysicalOrder int
}

// NewNode returns an empty node.
func NewNode(role Role, typeName string) *Node {
	return &Node{Role: role, Type: typeName}
}

// AddMetadata appends a metadata entry.
func (n *Node) AddMetadata(typeName, value string) {
	n.Metadata = append(n.Metadata, Metadata{Type: typeName, Value: value})
}

// SetMetadata replaces every entry of typeName with a single value, keeping
// the position of the first existing entry.
func (n *Node) SetMetadata(typeName, value string) {
	out := n.Metadata[:0]
	replaced := false
	for _, md := range n.Metadata {
		if md.Type != typeName {
			out = append(out, md)
			continue
		}
		if !replaced {
			out = append(out, Metadata{Type: typeName, Value: value})
			replaced = true
		}
	}
	n.Metadata = out
	if !replaced {
		n.AddMetadata(typeName, value)
	}
}

// MetadataValues returns the values of typeName in insertion order.
func (n *Node) MetadataValues(typeName string) []string {
	var values []string
	for _, md := range n.Metadata {
		if md.Type == typeName {
			values = append(values, md.Value)
		}
	}
	return values
}

// HasMetadata reports whether the node carries at least one entry of typeName.
func (n *Node) HasMetadata(typeName string) bool {
	for _, md := range n.Metadata {
		if md.Type == typeName {
			return true
		}
	}
	return false
}

// AddChild appends child as the last child.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// AddReference links n to target.
func (n *Node) AddReference(typeName string, target *Node) {
	n.References = append(n.References, Reference{Type: typeName, Target: target})
}

// ReferencesTo returns the targets of references of typeName.
func (n *Node) ReferencesTo(typeName string) []*Node {
	var targets []*Node
	for _, ref := range n.References {
		if ref.Type == typeName {
			targets = append(targets, ref.Target)
		}
	}
	return targets
}

// ChildrenWithRole returns the direct children carrying role.
func (n *Node) ChildrenWithRole(role Role) []*Node {
	var out []*Node
	for _, child := range n.Children {
		if child.Role == role {
			out = append(out, child)
		}
	}
	return out
}

// Document is the tree persisted for a volume.
type Document struct {
	Logical  *Node
	Physical *Node
}

// Anchor returns the logical root.
func (d *Document) Anchor() (*Node, error) {
	if d == nil || d.Logical == nil {
		return nil, services.Wrap(services.ErrInvalidSeed, "docmodel", "anchor", "document has no logical root", nil)
	}
	return d.Logical, nil
}

// Volume returns the single volume below the anchor.
func (d *Document) Volume() (*Node, error) {
	anchor, err := d.Anchor()
	if err != nil {
		return nil, err
	}
	volumes := anchor.ChildrenWithRole(RoleVolume)
	if len(volumes) != 1 || len(anchor.Children) != 1 {
		return nil, services.Wrap(
			services.ErrInvalidSeed,
			"docmodel",
			"volume",
			fmt.Sprintf("anchor must have exactly one volume child, found %d children", len(anchor.Children)),
			nil,
		)
	}
	return volumes[0], nil
}

// Pages returns the physical pages in order.
func (d *Document) Pages() []*Node {
	if d == nil || d.Physical == nil {
		return nil
	}
	return d.Physical.ChildrenWithRole(RolePage)
}

package docmodel

import (
	"encoding/json"

	"journalimport/internal/services"
)

// DefaultPhysicalType is used when a seed carries no physical root.
const DefaultPhysicalType = "BoundBook"

type seedNode struct {
	Type     string     `json:"type"`
	Metadata []Metadata `json:"metadata"`
	Children []seedNode `json:"children"`
}

type seedDocument struct {
	Logical  *seedNode `json:"logical"`
	Physical *seedNode `json:"physical"`
}

// DecodeSeed parses a catalogue record. The logical root becomes the anchor
// and must have exactly one child, the volume. Seeds without a physical root
// get an empty one of DefaultPhysicalType. A physical root that already
// holds pages is rejected since page order restarts at one on import.
func DecodeSeed(data []byte) (*Document, error) {
	if err := validateJSON(schemaSeed, data); err != nil {
		return nil, services.Wrap(services.ErrInvalidSeed, "docmodel", "decode seed", "", err)
	}
	var raw seedDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, services.Wrap(services.ErrInvalidSeed, "docmodel", "decode seed", "", err)
	}

	doc := &Document{Logical: convertSeed(raw.Logical, RoleAnchor, 0)}
	if raw.Physical != nil {
		if len(raw.Physical.Children) > 0 {
			return nil, services.Wrap(services.ErrInvalidSeed, "docmodel", "decode seed",
				"physical root must not carry pages", nil)
		}
		doc.Physical = convertSeed(raw.Physical, RolePhysical, 0)
	} else {
		doc.Physical = NewNode(RolePhysical, DefaultPhysicalType)
	}
	if _, err := doc.Volume(); err != nil {
		return nil, err
	}
	return doc, nil
}

// convertSeed maps seed depth to logical roles: the root is the anchor, its
// children volumes, anything deeper an issue.
func convertSeed(in *seedNode, role Role, depth int) *Node {
	node := NewNode(role, in.Type)
	node.Metadata = append([]Metadata(nil), in.Metadata...)
	for i := range in.Children {
		node.AddChild(convertSeed(&in.Children[i], childRole(role, depth+1), depth+1))
	}
	return node
}

func childRole(parent Role, depth int) Role {
	switch {
	case parent == RolePhysical:
		return RolePage
	case depth == 1:
		return RoleVolume
	default:
		return RoleIssue
	}
}

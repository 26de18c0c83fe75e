package builder

import (
	"fmt"
	"strconv"
	"strings"

	"journalimport/internal/config"
	"journalimport/internal/discovery"
	"journalimport/internal/docmodel"
	"journalimport/internal/layout"
	"journalimport/internal/services"
)

const uncountedPage = "uncounted"

// Input describes one volume.
type Input struct {
	Seed         *docmodel.Document
	JournalID    string
	VolumeFolder string
	Images       []discovery.ImageFile
	// Collections are the tags chosen for this record. When none is usable
	// DefaultCollection applies.
	Collections       []string
	DefaultCollection string
}

// Placement maps a source image to its destination base name.
type Placement struct {
	Source     string
	TargetName string
}

// Result is the assembled volume.
type Result struct {
	Document     *docmodel.Document
	Year         string
	ProcessTitle string
	Placements   []Placement
}

// Builder assembles documents against a ruleset.
type Builder struct {
	ruleset *docmodel.Ruleset
	names   config.Metadata
}

// New returns a Builder writing the metadata types named in names. Type names
// are resolved on every Build so a missing type only fails the volume that
// needs it.
func New(ruleset *docmodel.Ruleset, names config.Metadata) *Builder {
	return &Builder{ruleset: ruleset, names: names}
}

type resolvedTypes struct {
	identifier        docmodel.MetadataType
	title             docmodel.MetadataType
	publicationYear   docmodel.MetadataType
	currentNo         docmodel.MetadataType
	currentNoSorting  docmodel.MetadataType
	collection        docmodel.MetadataType
	physPageNumber    docmodel.MetadataType
	logicalPageNumber docmodel.MetadataType
	issue             docmodel.DocStructType
	page              docmodel.DocStructType
}

func (b *Builder) resolve() (resolvedTypes, error) {
	var (
		rt  resolvedTypes
		err error
	)
	if b.ruleset == nil {
		return rt, services.Wrap(services.ErrValidation, "builder", "resolve types", "ruleset is nil", nil)
	}
	metadata := []struct {
		dst  *docmodel.MetadataType
		name string
	}{
		{&rt.identifier, b.names.Identifier},
		{&rt.title, b.names.Title},
		{&rt.publicationYear, b.names.PublicationYear},
		{&rt.currentNo, b.names.CurrentNo},
		{&rt.currentNoSorting, b.names.CurrentNoSorting},
		{&rt.collection, b.names.Collection},
		{&rt.physPageNumber, b.names.PhysPageNumber},
		{&rt.logicalPageNumber, b.names.LogicalPageNumber},
	}
	for _, m := range metadata {
		if *m.dst, err = b.ruleset.MetadataType(m.name); err != nil {
			return rt, err
		}
	}
	if rt.issue, err = b.ruleset.DocStructType(b.names.IssueType); err != nil {
		return rt, err
	}
	if rt.page, err = b.ruleset.DocStructType(b.names.PageType); err != nil {
		return rt, err
	}
	return rt, nil
}

// Build extends in.Seed in place and returns it with the image naming plan.
func (b *Builder) Build(in Input) (*Result, error) {
	if in.Seed == nil {
		return nil, services.Wrap(services.ErrValidation, "builder", "build", "seed document is nil", nil)
	}
	types, err := b.resolve()
	if err != nil {
		return nil, err
	}
	doc := in.Seed
	anchor, err := doc.Anchor()
	if err != nil {
		return nil, err
	}
	volume, err := doc.Volume()
	if err != nil {
		return nil, err
	}
	if doc.Physical == nil {
		doc.Physical = docmodel.NewNode(docmodel.RolePhysical, docmodel.DefaultPhysicalType)
	}
	if len(doc.Physical.Children) > 0 {
		return nil, services.Wrap(services.ErrInvalidSeed, "builder", "build", "physical root already carries pages", nil)
	}

	year := layout.VolumeYear(in.JournalID, in.VolumeFolder)
	processTitle := layout.ProcessTitle(in.JournalID, year)

	if !anchor.HasMetadata(types.identifier.Name) {
		anchor.AddMetadata(types.identifier.Name, in.JournalID)
	}
	putMetadata(volume, types.publicationYear, year)
	putMetadata(volume, types.currentNo, year)
	putMetadata(volume, types.currentNoSorting, year)
	putMetadata(volume, types.identifier, processTitle)

	issues := newIssueIndex(volume, types.title.Name)
	placements := make([]Placement, 0, len(in.Images))
	targets := make(map[string]string, len(in.Images))

	for i, image := range in.Images {
		order := i + 1
		page := docmodel.NewNode(docmodel.RolePage, types.page.Name)
		page.PhysicalOrder = order
		page.ImageName = image.Name
		page.AddMetadata(types.physPageNumber.Name, strconv.Itoa(order))
		page.AddMetadata(types.logicalPageNumber.Name, uncountedPage)
		doc.Physical.AddChild(page)

		if image.Nested(in.VolumeFolder) {
			issue := issues.findOrCreate(image.Parent, func() *docmodel.Node {
				node := docmodel.NewNode(docmodel.RoleIssue, types.issue.Name)
				node.AddMetadata(types.title.Name, image.Parent)
				return node
			})
			issue.AddReference(docmodel.ReferenceLogicalPhysical, page)
		}
		page.ImageName = image.TargetName(in.VolumeFolder)
		volume.AddReference(docmodel.ReferenceLogicalPhysical, page)

		if prev, dup := targets[page.ImageName]; dup {
			return nil, services.Wrap(
				services.ErrFileIO,
				"builder",
				"plan images",
				fmt.Sprintf("%s and %s both map to %s", prev, image.Path, page.ImageName),
				nil,
			)
		}
		targets[page.ImageName] = image.Path
		placements = append(placements, Placement{Source: image.Path, TargetName: page.ImageName})
	}

	for _, tag := range collectionTags(in.Collections, in.DefaultCollection) {
		anchor.AddMetadata(types.collection.Name, tag)
		volume.AddMetadata(types.collection.Name, tag)
	}

	return &Result{
		Document:     doc,
		Year:         year,
		ProcessTitle: processTitle,
		Placements:   placements,
	}, nil
}

// putMetadata keeps single-valued types single.
func putMetadata(node *docmodel.Node, mt docmodel.MetadataType, value string) {
	if mt.Repeatable {
		node.AddMetadata(mt.Name, value)
		return
	}
	node.SetMetadata(mt.Name, value)
}

func collectionTags(perRecord []string, fallback string) []string {
	tags := make([]string, 0, len(perRecord))
	for _, tag := range perRecord {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 0 {
		return tags
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return []string{fallback}
	}
	return nil
}

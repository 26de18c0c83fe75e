package builder

import "journalimport/internal/docmodel"

// issueIndex finds issues of a volume by title while new issues are appended
// to the volume in creation order.
type issueIndex struct {
	volume    *docmodel.Node
	titleType string
	byTitle   map[string]*docmodel.Node
}

func newIssueIndex(volume *docmodel.Node, titleType string) *issueIndex {
	idx := &issueIndex{
		volume:    volume,
		titleType: titleType,
		byTitle:   make(map[string]*docmodel.Node),
	}
	for _, child := range volume.ChildrenWithRole(docmodel.RoleIssue) {
		for _, title := range child.MetadataValues(titleType) {
			if _, ok := idx.byTitle[title]; !ok {
				idx.byTitle[title] = child
			}
		}
	}
	return idx
}

func (idx *issueIndex) findOrCreate(title string, create func() *docmodel.Node) *docmodel.Node {
	if issue, ok := idx.byTitle[title]; ok {
		return issue
	}
	issue := create()
	idx.volume.AddChild(issue)
	idx.byTitle[title] = issue
	return issue
}

package docsystem

// Folder is a node of the user's folder tree as reported by the backend.
// Documents is filled lazily; an empty slice does not mean the folder is
// empty unless DocumentsLoaded is set.
type Folder struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	ParentID        *string    `json:"parent_id"` // nil = root level
	DocumentCount   int        `json:"document_count"`
	Documents       []Document `json:"documents"`
	DocumentsLoaded bool       `json:"-"`
}

// IsRoot reports whether the folder sits at the top level of the tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderChildren groups folders by parent ID ("" for root level), keeping the
// backend's ordering within each group.
func FolderChildren(folders []Folder) map[string][]Folder {
	children := make(map[string][]Folder)
	for _, f := range folders {
		key := ""
		if f.ParentID != nil {
			key = *f.ParentID
		}
		children[key] = append(children[key], f)
	}
	return children
}

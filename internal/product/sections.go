package product

// Section is one tab or modal in render order.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Titles of the fixed sections.
type Titles struct {
	Description       string
	ProductAttributes string
}

// Sections lists the secondary information sections in render order: the
// description, the features section, one per explicit attribute, then items.
// Empty sources are skipped.
func Sections(description string, attrs, explicit []Attribute, items []Item, titles Titles) []Section {
	var out []Section
	if description != "" {
		out = append(out, Section{Key: KeyDescription, Title: titles.Description})
	}
	if len(attrs) > 0 {
		out = append(out, Section{Key: KeyProductAttributes, Title: titles.ProductAttributes})
	}
	for _, a := range explicit {
		out = append(out, Section{Key: a.ID, Title: a.Name})
	}
	for _, it := range items {
		out = append(out, Section{Key: it.Key, Title: it.Title})
	}
	return out
}

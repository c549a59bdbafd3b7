package importer

import (
	"strings"

	"storefront/internal/model"
)

// Catalog is a set of catalogue records keyed by SKU. Adding a SKU twice
// replaces the earlier record but keeps its original position.
type Catalog struct {
	index    map[string]int
	records  []model.ProductImport
	rejected int
}

// NewCatalog creates an empty catalogue.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Add inserts or replaces the record for p.SKU.
func (c *Catalog) Add(p model.ProductImport) {
	if p.Slug == "" {
		p.Slug = slugify(p.Title)
	}
	if i, ok := c.index[p.SKU]; ok {
		c.records[i] = p
		return
	}
	c.index[p.SKU] = len(c.records)
	c.records = append(c.records, p)
}

// Merge adds every record of other, in order.
func (c *Catalog) Merge(other *Catalog) {
	for _, p := range other.records {
		c.Add(p)
	}
	c.rejected += other.rejected
}

// Contains reports whether sku is present.
func (c *Catalog) Contains(sku string) bool {
	_, ok := c.index[sku]
	return ok
}

// Get returns the record for sku.
func (c *Catalog) Get(sku string) (model.ProductImport, bool) {
	i, ok := c.index[sku]
	if !ok {
		return model.ProductImport{}, false
	}
	return c.records[i], true
}

// Size returns the number of distinct SKUs.
func (c *Catalog) Size() int {
	return len(c.records)
}

// Rejected returns the number of lines skipped as invalid.
func (c *Catalog) Rejected() int {
	return c.rejected
}

// Products returns the records in first-seen order.
func (c *Catalog) Products() []model.ProductImport {
	return c.records
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

package domain

// ProductDisplay is the catalog data the storefront views attach to a cart line.
type ProductDisplay struct {
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
}

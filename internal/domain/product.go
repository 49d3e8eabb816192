package domain

// Product carries the display metadata of a book shown on storefront pages
// and inside cart lines.
type Product struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Merchandise is one purchasable configuration of a product, e.g. a specific
// edition or binding. Selected options reconstruct the variant display URL.
type Merchandise struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SelectedOptions []SelectedOption `json:"selectedOptions,omitempty"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CatalogEntry is a sellable variant together with its product metadata and
// current unit price, as listed by the catalog.
type CatalogEntry struct {
	Merchandise Merchandise `json:"merchandise"`
	Product     Product     `json:"product"`
	Price       Money       `json:"price"`
}

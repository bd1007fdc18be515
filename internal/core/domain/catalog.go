package domain

// Location is a site holding inventory (a shop, a warehouse, a van).
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Item belongs to exactly one Category at all times.
type Item struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

// CategoryItems is one category together with the items that reference it.
type CategoryItems struct {
	Category Category `json:"category"`
	Items    []Item   `json:"items"`
}

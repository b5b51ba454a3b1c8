// Package product holds the product model and the client for the
// product image API.
package product

// Product is the subject of an image upload. Only ID matters to the
// upload path; the rest is display data.
type Product struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields,omitempty"`
}

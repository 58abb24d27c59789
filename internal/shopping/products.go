package shopping

import (
	"strings"

	"philcali.me/groceries/internal/exceptions"
)

// FindProduct looks a catalog name up case-insensitively.
func FindProduct(products []Product, name string) (Product, bool) {
	name = strings.TrimSpace(name)
	for _, product := range products {
		if strings.EqualFold(strings.TrimSpace(product.Name), name) {
			return product, true
		}
	}
	return Product{}, false
}

func duplicateProduct(existing Product) *exceptions.ConflictError {
	return exceptions.Conflict("product", existing.Name)
}

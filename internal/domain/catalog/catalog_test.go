package catalog_test

import (
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

const testOwner = "00000000-0000-0000-0000-0000000000aa"

// cat construye una categoría mínima para los tests.
func cat(id, parentID, name string, order int) *entity.Category {
	return &entity.Category{ID: id, OwnerID: testOwner, ParentID: parentID, Name: name, Slug: id, Order: order, Active: true}
}

// chainABC devuelve A -> B -> C (C cuelga de B, B de A).
func chainABC() []*entity.Category {
	return []*entity.Category{
		cat("C", "B", "Celulares", 0),
		cat("A", "", "Eletrônicos", 0),
		cat("B", "A", "Telefonia", 0),
	}
}

func countNodes(nodes []*entity.CategoryNode) int {
	n := 0
	for _, node := range nodes {
		n += 1 + countNodes(node.Subcategorias)
	}
	return n
}

package catalog

import "github.com/jhoicas/catalogo-api/internal/domain/entity"

// WouldCreateCycle indica si colgar categoryID bajo proposedParentID crearía un ciclo.
// Recorre los ancestros desde el padre propuesto con un conjunto de visitados, de modo que
// termina incluso si los datos ya estaban corruptos (un nodo repetido también cuenta como ciclo).
func WouldCreateCycle(categoryID, proposedParentID string, categories []*entity.Category) bool {
	if proposedParentID == "" {
		return false
	}
	if proposedParentID == categoryID {
		return true
	}
	parents := parentIndex(categories)
	visited := make(map[string]struct{}, len(parents))
	current := proposedParentID
	for current != "" {
		if current == categoryID {
			return true
		}
		if _, seen := visited[current]; seen {
			return true
		}
		visited[current] = struct{}{}
		parent, ok := parents[current]
		if !ok {
			// ancestro fuera del snapshot: la cadena termina aquí
			return false
		}
		current = parent
	}
	return false
}

// IsDescendant indica si candidateID está debajo de ancestorID (sin incluirlo).
func IsDescendant(ancestorID, candidateID string, categories []*entity.Category) bool {
	if ancestorID == "" || candidateID == "" || ancestorID == candidateID {
		return false
	}
	return WouldCreateCycle(ancestorID, candidateID, categories)
}

func parentIndex(categories []*entity.Category) map[string]string {
	parents := make(map[string]string, len(categories))
	for _, c := range categories {
		if c == nil {
			continue
		}
		parents[c.ID] = c.ParentID
	}
	return parents
}

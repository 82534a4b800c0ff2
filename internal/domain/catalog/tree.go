package catalog

import (
	"sort"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// BuildForest ensambla el bosque del proveedor a partir de la lista plana.
// Construye una sola vez el índice parentID -> hijos (O(n)) y arma cada nodo desde ese índice.
// Hermanos ordenados por (Order, Name, ID).
//
// Con datos históricamente corruptos no se pierde ningún nodo: un huérfano (padre ausente) o un
// nodo atrapado en un ciclo previo se promueve a raíz, y el ciclo se corta en ese nodo.
func BuildForest(categories []*entity.Category) []*entity.CategoryNode {
	byID := indexByID(categories)
	children := make(map[string][]*entity.Category, len(byID))
	roots := make([]*entity.Category, 0)
	for _, c := range uniqueCategories(categories) {
		if c.ParentID == "" || c.ParentID == c.ID || byID[c.ParentID] == nil {
			roots = append(roots, c)
			continue
		}
		children[c.ParentID] = append(children[c.ParentID], c)
	}
	for parentID := range children {
		sortSiblings(children[parentID])
	}
	sortSiblings(roots)

	visited := make(map[string]struct{}, len(byID))
	var assemble func(c *entity.Category) *entity.CategoryNode
	assemble = func(c *entity.Category) *entity.CategoryNode {
		visited[c.ID] = struct{}{}
		node := &entity.CategoryNode{Category: *c, Subcategorias: []*entity.CategoryNode{}}
		for _, child := range children[c.ID] {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			node.Subcategorias = append(node.Subcategorias, assemble(child))
		}
		return node
	}

	forest := make([]*entity.CategoryNode, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, assemble(r))
	}

	if len(visited) < len(byID) {
		rest := make([]*entity.Category, 0, len(byID)-len(visited))
		for _, c := range uniqueCategories(categories) {
			if _, seen := visited[c.ID]; !seen {
				rest = append(rest, c)
			}
		}
		sortSiblings(rest)
		for _, c := range rest {
			if _, seen := visited[c.ID]; seen {
				continue
			}
			forest = append(forest, assemble(c))
		}
		sort.SliceStable(forest, func(i, j int) bool {
			return siblingLess(&forest[i].Category, &forest[j].Category)
		})
	}
	return forest
}

// Flatten recorre el bosque en preorden y devuelve copias de las categorías.
func Flatten(forest []*entity.CategoryNode) []*entity.Category {
	out := make([]*entity.Category, 0)
	visited := make(map[*entity.CategoryNode]struct{})
	var walk func(nodes []*entity.CategoryNode)
	walk = func(nodes []*entity.CategoryNode) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			c := n.Category
			out = append(out, &c)
			walk(n.Subcategorias)
		}
	}
	walk(forest)
	return out
}

// GetPath devuelve el breadcrumb desde la raíz hasta categoryID (inclusive).
// Vacío si categoryID no está en el snapshot.
func GetPath(categoryID string, categories []*entity.Category) []entity.PathItem {
	byID := indexByID(categories)
	path := make([]entity.PathItem, 0)
	visited := make(map[string]struct{})
	current := byID[categoryID]
	for current != nil {
		if _, seen := visited[current.ID]; seen {
			break
		}
		visited[current.ID] = struct{}{}
		path = append(path, entity.PathItem{ID: current.ID, Name: current.Name, Slug: current.Slug})
		if current.ParentID == "" {
			break
		}
		current = byID[current.ParentID]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// GetDescendantIDs devuelve, en preorden, los IDs de todos los nodos cuya cadena de ancestros
// incluye categoryID. No incluye a categoryID.
func GetDescendantIDs(categoryID string, categories []*entity.Category) []string {
	ids := make([]string, 0)
	if indexByID(categories)[categoryID] == nil {
		return ids
	}
	children := make(map[string][]*entity.Category)
	for _, c := range uniqueCategories(categories) {
		if c.ParentID != "" && c.ParentID != c.ID {
			children[c.ParentID] = append(children[c.ParentID], c)
		}
	}
	for parentID := range children {
		sortSiblings(children[parentID])
	}
	visited := map[string]struct{}{categoryID: {}}
	var walk func(id string)
	walk = func(id string) {
		for _, child := range children[id] {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			ids = append(ids, child.ID)
			walk(child.ID)
		}
	}
	walk(categoryID)
	return ids
}

// GetDepth número de saltos hasta una raíz (raíz = 0). -1 si categoryID no existe.
func GetDepth(categoryID string, categories []*entity.Category) int {
	byID := indexByID(categories)
	current := byID[categoryID]
	if current == nil {
		return -1
	}
	depth := 0
	visited := map[string]struct{}{current.ID: {}}
	for current.ParentID != "" {
		parent := byID[current.ParentID]
		if parent == nil {
			break
		}
		if _, seen := visited[parent.ID]; seen {
			break
		}
		visited[parent.ID] = struct{}{}
		depth++
		current = parent
	}
	return depth
}

func indexByID(categories []*entity.Category) map[string]*entity.Category {
	byID := make(map[string]*entity.Category, len(categories))
	for _, c := range categories {
		if c == nil {
			continue
		}
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = c
		}
	}
	return byID
}

// uniqueCategories descarta nil y IDs repetidos (gana la primera aparición).
func uniqueCategories(categories []*entity.Category) []*entity.Category {
	seen := make(map[string]struct{}, len(categories))
	out := make([]*entity.Category, 0, len(categories))
	for _, c := range categories {
		if c == nil {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func sortSiblings(list []*entity.Category) {
	sort.SliceStable(list, func(i, j int) bool {
		return siblingLess(list[i], list[j])
	})
}

func siblingLess(a, b *entity.Category) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

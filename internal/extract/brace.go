package extract

import "github.com/jward/mnemo/internal/graph"

// scanBrace handles the brace-syntax family (.js, .jsx, .ts, .tsx).
// Matchers are independent and non-exclusive: a line may emit more than one
// entity.
func (e *Extractor) scanBrace(content, path string) []*graph.Entity {
	var entities []*graph.Entity
	for i, line := range lines(content) {
		lineNum := i + 1

		if m := e.braceFunction.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindFunction, path, lineNum, line))
		}
		if m := e.braceClass.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindClass, path, lineNum, line))
		}
		// Import entities are named by the module path, not the local alias.
		if m := e.braceImport.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindImport, path, lineNum, line))
		}
		if m := e.braceVariable.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindVariable, path, lineNum, line))
		}
	}
	return entities
}

package extract

import "github.com/jward/mnemo/internal/graph"

// scanIndent handles the indentation-syntax family (.py).
func (e *Extractor) scanIndent(content, path string) []*graph.Entity {
	var entities []*graph.Entity
	for i, line := range lines(content) {
		lineNum := i + 1

		if m := e.indentFunction.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindFunction, path, lineNum, line))
		}
		if m := e.indentClass.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindClass, path, lineNum, line))
		}
		if m := e.indentImport.FindStringSubmatch(line); m != nil {
			// "from mod import sym" is recorded as "mod.sym"; a bare
			// "import sym" is just "sym".
			name := m[2]
			if m[1] != "" {
				name = m[1] + "." + m[2]
			}
			entities = append(entities, entityAt(name, graph.KindImport, path, lineNum, line))
		}
	}
	return entities
}

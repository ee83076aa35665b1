package extract

import "github.com/jward/mnemo/internal/graph"

// scanSystems handles the systems-syntax family (.rs). Structs, traits,
// enums, and impl blocks all map to the class kind; the impl entity is named
// "impl <Type>" to keep it distinguishable from the type itself.
func (e *Extractor) scanSystems(content, path string) []*graph.Entity {
	var entities []*graph.Entity
	for i, line := range lines(content) {
		lineNum := i + 1

		if m := e.sysFunction.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindFunction, path, lineNum, line))
		}
		if m := e.sysStruct.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindClass, path, lineNum, line))
		}
		if m := e.sysTrait.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindClass, path, lineNum, line))
		}
		if m := e.sysEnum.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindClass, path, lineNum, line))
		}
		// The full use path up to the terminating semicolon, aliases included.
		if m := e.sysUse.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindImport, path, lineNum, line))
		}
		if m := e.sysMod.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindModule, path, lineNum, line))
		}
		if m := e.sysConst.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt(m[1], graph.KindVariable, path, lineNum, line))
		}
		if m := e.sysImpl.FindStringSubmatch(line); m != nil {
			entities = append(entities, entityAt("impl "+m[1], graph.KindClass, path, lineNum, line))
		}
	}
	return entities
}

package capture

import (
	"fmt"
	"strings"

	"github.com/not-ani/blockfile/internal/docxfile"
)

// transitiveStyleIDs walks basedOn/next/link from each of ids, using a
// seen-set so cyclic or repeated references are only visited once.
func transitiveStyleIDs(ids []string, defs map[string]docxfile.StyleDef) []string {
	seen := make(map[string]bool)
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		def, ok := defs[id]
		if !ok {
			return
		}
		visit(def.BasedOn)
		visit(def.Next)
		visit(def.Link)
		order = append(order, id)
	}

	for _, id := range ids {
		visit(id)
	}
	return order
}

// MergeStyles implements spec §4.H step 7's style merge: every style in
// the transitive closure of requestedIDs that destStyles is missing is
// spliced in, dependencies first, just before </w:styles>.
func MergeStyles(destStylesXML, sourceStylesXML []byte, requestedIDs []string) ([]byte, error) {
	if len(requestedIDs) == 0 {
		return destStylesXML, nil
	}

	_, sourceDefs, err := docxfile.ParseStyles(sourceStylesXML)
	if err != nil {
		return nil, fmt.Errorf("parse source styles.xml for merge; %w", err)
	}
	_, destDefs, err := docxfile.ParseStyles(destStylesXML)
	if err != nil {
		return nil, fmt.Errorf("parse destination styles.xml for merge; %w", err)
	}

	closure := transitiveStyleIDs(requestedIDs, sourceDefs)

	var toAppend strings.Builder
	for _, id := range closure {
		if _, exists := destDefs[id]; exists {
			continue
		}
		def, ok := sourceDefs[id]
		if !ok {
			continue
		}
		toAppend.Write(sourceStylesXML[def.Start:def.End])
	}

	if toAppend.Len() == 0 {
		return destStylesXML, nil
	}

	idx := strings.LastIndex(string(destStylesXML), "</w:styles>")
	if idx < 0 {
		return nil, fmt.Errorf("merge styles; destination styles.xml has no </w:styles> closing tag")
	}

	out := make([]byte, 0, len(destStylesXML)+toAppend.Len())
	out = append(out, destStylesXML[:idx]...)
	out = append(out, toAppend.String()...)
	out = append(out, destStylesXML[idx:]...)
	return out, nil
}

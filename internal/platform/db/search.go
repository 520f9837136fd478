package db

import (
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a search term into an ILIKE pattern that matches the
// term as a literal substring. An empty term matches everything.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// ILikeAny renders "(col1 ILIKE $n OR col2 ILIKE $n ...)" reusing a single
// placeholder for every column.
func ILikeAny(placeholder int, columns ...string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", col, placeholder)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

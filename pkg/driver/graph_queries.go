package driver

import (
	"fmt"
	"regexp"
)

// SchemaKind distinguishes constraints from indexes.
type SchemaKind string

const (
	SchemaConstraint SchemaKind = "constraint"
	SchemaIndex      SchemaKind = "index"
)

// SchemaStatement is one constraint or index of the movie graph.
type SchemaStatement struct {
	Name     string
	Kind     SchemaKind
	Label    string
	Property string
	Cypher   string
}

type schemaSpec struct {
	name     string
	kind     SchemaKind
	label    string
	variable string
	property string
}

var movieSchema = []schemaSpec{
	{"movie_id_unique", SchemaConstraint, "Movie", "m", "id"},
	{"movie_imdb_id_unique", SchemaConstraint, "Movie", "m", "imdbId"},
	{"genre_name_unique", SchemaConstraint, "Genre", "g", "name"},
	{"director_id_unique", SchemaConstraint, "Director", "d", "id"},
	{"actor_id_unique", SchemaConstraint, "Actor", "a", "id"},
	{"movie_title_index", SchemaIndex, "Movie", "m", "title"},
	{"movie_year_index", SchemaIndex, "Movie", "m", "releaseYear"},
	{"movie_rating_index", SchemaIndex, "Movie", "m", "imdbRating"},
}

// GetSchemaStatements returns the constraints and indexes of the movie
// graph in the syntax of the given provider. Constraints come first.
func GetSchemaStatements(provider GraphProvider) []SchemaStatement {
	out := make([]SchemaStatement, 0, len(movieSchema))
	for _, s := range movieSchema {
		st := SchemaStatement{Name: s.name, Kind: s.kind, Label: s.label, Property: s.property}
		switch provider {
		case GraphProviderMemgraph:
			if s.kind == SchemaConstraint {
				st.Cypher = fmt.Sprintf("CREATE CONSTRAINT ON (%s:%s) ASSERT %s.%s IS UNIQUE",
					s.variable, s.label, s.variable, s.property)
			} else {
				st.Cypher = fmt.Sprintf("CREATE INDEX ON :%s(%s)", s.label, s.property)
			}

		default: // Neo4j
			if s.kind == SchemaConstraint {
				st.Cypher = fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (%s:%s) REQUIRE %s.%s IS UNIQUE",
					s.name, s.variable, s.label, s.variable, s.property)
			} else {
				st.Cypher = fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (%s:%s) ON (%s.%s)",
					s.name, s.variable, s.label, s.variable, s.property)
			}
		}
		out = append(out, st)
	}
	return out
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s can be used as a label or relationship
// type without quoting.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// CountNodesQuery returns a query counting the nodes carrying label.
// The result column is "count".
func CountNodesQuery(label string) (string, error) {
	if !ValidIdentifier(label) {
		return "", fmt.Errorf("invalid label %q", label)
	}
	return fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", label), nil
}

// CountRelationshipsQuery returns a query counting relationships of relType.
// The result column is "count".
func CountRelationshipsQuery(relType string) (string, error) {
	if !ValidIdentifier(relType) {
		return "", fmt.Errorf("invalid relationship type %q", relType)
	}
	return fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS count", relType), nil
}

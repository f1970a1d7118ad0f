// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for article aggregates in PostgreSQL.
// The same builder is shared by every aggregate so filters behave identically
// across endpoints. It uses numbered placeholders ($1, $2, etc.).
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds the WHERE clause and arguments for f. extra
// conditions are ANDed verbatim and must not contain placeholders.
// Returns an empty clause if there are no conditions.
func (qb *ArticleQueryBuilder) BuildWhereClause(f repository.ArticleFilter, tableAlias string, extra ...string) (clause string, args []interface{}) {
	col := func(name string) string {
		if tableAlias == "" {
			return name
		}
		return tableAlias + "." + name
	}

	conditions := append([]string(nil), extra...)
	paramIndex := 1

	if f.From != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", col("seen_at"), paramIndex))
		args = append(args, *f.From)
		paramIndex++
	}
	if f.To != nil {
		conditions = append(conditions, fmt.Sprintf("%s <= $%d", col("seen_at"), paramIndex))
		args = append(args, *f.To)
		paramIndex++
	}
	if f.Country != "" {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col("source_country"), paramIndex))
		args = append(args, strings.ToUpper(f.Country))
		paramIndex++
	}
	if f.Author != "" {
		if strings.EqualFold(f.Author, entity.UnknownAuthor) {
			conditions = append(conditions, fmt.Sprintf(
				"NOT EXISTS (SELECT 1 FROM article_authors fa WHERE fa.article_id = %s)", col("id")))
		} else {
			conditions = append(conditions, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM article_authors fa WHERE fa.article_id = %s AND lower(fa.author) = lower($%d))",
				col("id"), paramIndex))
			args = append(args, f.Author)
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// nextParam returns the placeholder following args.
func nextParam(args []interface{}) string {
	return fmt.Sprintf("$%d", len(args)+1)
}

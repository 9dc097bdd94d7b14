package repository

import (
	"strings"

	"github.com/HanjuJo/nexo-v1/internal/dto"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// normalizeName folds search input to NFC so that Hangul typed as decomposed
// jamo (common on macOS clients) matches names stored in composed form.
func normalizeName(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// NormalizeName is applied to names before they are stored.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// nameContains adds a case-insensitive substring match on column.
// LOWER/LIKE instead of ILIKE keeps the query portable to SQLite.
func nameContains(q *gorm.DB, column, needle string) *gorm.DB {
	n := normalizeName(needle)
	if n == "" {
		return q
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(n)
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+escaped+"%")
}

// page applies skip/limit.
func page(q *gorm.DB, p dto.Pagination) *gorm.DB {
	p.Normalize()
	return q.Offset(p.Skip).Limit(p.Limit)
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

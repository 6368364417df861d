package db

import (
	"strings"

	"reportdex/models"
)

// FilterResult is a parameterized WHERE fragment with its bound args.
type FilterResult struct {
	WhereClause string
	Args        []interface{}
}

// Category data may live in the flat "category" JSON list column or the
// structured "categories" JSON object column. Both predicates verify the
// column is valid JSON before walking it, so malformed rows count as "no
// match" instead of raising a query error.
const (
	flatCategoryClause = `(category IS NOT NULL AND json_valid(category)
		AND EXISTS (SELECT 1 FROM json_each(category) jc WHERE jc.value = ?))`

	groupCategoryClause = `(categories IS NOT NULL AND json_valid(categories)
		AND EXISTS (SELECT 1 FROM json_each(categories, '$.categories') jg
			WHERE json_extract(jg.value, '$.category') = ?))`

	pairedSubcategoryClause = `(categories IS NOT NULL AND json_valid(categories)
		AND EXISTS (SELECT 1
			FROM json_each(categories, '$.categories') jg,
			     json_each(jg.value, '$.subcategories') js
			WHERE json_extract(jg.value, '$.category') = ? AND js.value = ?))`

	anySubcategoryClause = `((categories IS NOT NULL AND json_valid(categories)
		AND EXISTS (SELECT 1
			FROM json_each(categories, '$.categories') jg,
			     json_each(jg.value, '$.subcategories') js
			WHERE js.value = ?))
		OR subcategory = ?)`

	topicClause = `(key_topics IS NOT NULL AND json_valid(key_topics)
		AND EXISTS (SELECT 1 FROM json_each(key_topics) jt WHERE jt.value = ?))`
)

// BuildFilter translates validated filters plus sanitized text-search terms
// into one AND-joined WHERE fragment. Every value is bound; nothing
// user-supplied is interpolated into the SQL text.
func BuildFilter(f *models.Filters, terms []string) *FilterResult {
	var parts []string
	var args []interface{}

	add := func(clause string, vals ...interface{}) {
		parts = append(parts, clause)
		args = append(args, vals...)
	}

	if f != nil {
		if f.Source != "" {
			add("content_source = ?", f.Source)
		}
		if f.Language != "" {
			add("language = ?", f.Language)
		}
		if f.ContentType != "" {
			add("content_type = ?", f.ContentType)
		}
		if f.Complexity != "" {
			add("complexity_level = ?", f.Complexity)
		}
		if f.Channel != "" {
			add("channel = ?", f.Channel)
		}
		if f.HasAudio != nil {
			add("has_audio = ?", *f.HasAudio)
		}
		if f.DateFrom != "" {
			add("published_at IS NOT NULL AND substr(published_at, 1, 10) >= ?", f.DateFrom)
		}
		if f.DateTo != "" {
			add("published_at IS NOT NULL AND substr(published_at, 1, 10) <= ?", f.DateTo)
		}
		if len(f.Topics) > 0 {
			clause, topicArgs := unionClause(topicClause, f.Topics, 1)
			add(clause, topicArgs...)
		}
		if len(f.Subcategory) > 0 {
			clause, subArgs := subcategoryClause(f.ParentCategory, f.Subcategory)
			add(clause, subArgs...)
		} else if len(f.Category) > 0 {
			var ors []string
			for _, c := range f.Category {
				ors = append(ors, "("+flatCategoryClause+" OR "+groupCategoryClause+")")
				args = append(args, c, c)
			}
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		}
	}

	for _, term := range terms {
		parts = append(parts, `search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(term)+"%")
	}

	if len(parts) == 0 {
		return &FilterResult{WhereClause: "1=1", Args: []interface{}{}}
	}
	return &FilterResult{WhereClause: strings.Join(parts, " AND "), Args: args}
}

// subcategoryClause builds the hierarchical union predicate: an OR over all
// selected (parent, subcategory) pairs. Subcategories without a paired
// parent match under any parent that declares them.
func subcategoryClause(parents, subs []string) (string, []interface{}) {
	var ors []string
	var args []interface{}
	for i, sub := range subs {
		parent := ""
		if i < len(parents) {
			parent = parents[i]
		}
		if parent != "" {
			ors = append(ors, pairedSubcategoryClause)
			args = append(args, parent, sub)
		} else {
			ors = append(ors, anySubcategoryClause)
			args = append(args, sub, sub)
		}
	}
	return "(" + strings.Join(ors, " OR ") + ")", args
}

// unionClause ORs one parameterized clause per value; argsPer is how many
// placeholders the clause takes.
func unionClause(clause string, values []string, argsPer int) (string, []interface{}) {
	ors := make([]string, 0, len(values))
	var args []interface{}
	for _, v := range values {
		ors = append(ors, clause)
		for i := 0; i < argsPer; i++ {
			args = append(args, v)
		}
	}
	return "(" + strings.Join(ors, " OR ") + ")", args
}

// escapeLike escapes the LIKE wildcards in a bound pattern fragment.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

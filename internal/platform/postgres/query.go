package postgres

import (
	"strconv"
	"strings"

	"github.com/phrazzld/obo-api/internal/domain"
)

// Query is a SQL statement and its positional arguments.
type Query struct {
	SQL  string
	Args []any
}

// deckSummaryColumns selects a deck row in DeckSummary field order.
const deckSummaryColumns = `d.id, d.name, d.age_min, d.age_max, d.voice,
       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count,
       d.created_at`

// whereBuilder accumulates AND-joined predicates and their bound arguments.
type whereBuilder struct {
	predicates []string
	args       []any
}

// bind records v as the next argument and returns its placeholder.
func (w *whereBuilder) bind(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) add(predicate string) {
	w.predicates = append(w.predicates, predicate)
}

func (w *whereBuilder) clause() string {
	if len(w.predicates) == 0 {
		return ""
	}
	return "\nWHERE " + strings.Join(w.predicates, "\n  AND ")
}

func deckFilterWhere(filter domain.DeckFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.Age != nil {
		age := w.bind(*filter.Age)
		w.add("d.age_min <= " + age + " AND d.age_max >= " + age)
	}
	return w
}

// BuildListDecksQuery returns the page query for filter. The limit is clamped
// to [1, domain.MaxLimit] and the offset floored at zero regardless of what
// the caller validated.
func BuildListDecksQuery(filter domain.DeckFilter) Query {
	w := deckFilterWhere(filter)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(deckSummaryColumns)
	b.WriteString("\nFROM decks d")
	b.WriteString(w.clause())
	b.WriteString("\nORDER BY d.id ASC")
	b.WriteString("\nLIMIT ")
	b.WriteString(w.bind(filter.ClampedLimit()))
	b.WriteString(" OFFSET ")
	b.WriteString(w.bind(filter.ClampedOffset()))

	return Query{SQL: b.String(), Args: w.args}
}

// BuildCountDecksQuery counts every deck matching filter, ignoring pagination.
func BuildCountDecksQuery(filter domain.DeckFilter) Query {
	w := deckFilterWhere(filter)
	return Query{
		SQL:  "SELECT COUNT(*)\nFROM decks d" + w.clause(),
		Args: w.args,
	}
}

// BuildGetDeckQuery selects a single deck summary by ID.
func BuildGetDeckQuery(id int64) Query {
	return Query{
		SQL:  "SELECT " + deckSummaryColumns + "\nFROM decks d\nWHERE d.id = $1",
		Args: []any{id},
	}
}

// BuildGetCardsQuery selects a deck's cards in display order. Cards sharing a
// position are ordered by ID so repeated reads agree.
func BuildGetCardsQuery(deckID int64) Query {
	return Query{
		SQL: `SELECT question, answer, position
FROM cards
WHERE deck_id = $1
ORDER BY position ASC, id ASC`,
		Args: []any{deckID},
	}
}

// BuildContentStatsQuery counts all decks and all cards.
func BuildContentStatsQuery() Query {
	return Query{SQL: "SELECT (SELECT COUNT(*) FROM decks), (SELECT COUNT(*) FROM cards)"}
}

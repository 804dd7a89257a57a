package domain

// Card is a single question/answer pair. A card always belongs to exactly
// one deck; its Position defines display order within that deck.
//
// Field order matches the column order of the card query so rows can be
// collected positionally.
type Card struct {
	Question string
	Answer   string
	Position int
}

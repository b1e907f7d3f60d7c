package domain

import (
	"sort"
	"strings"
)

var suitSymbols = map[byte]string{'c': "♣", 'd': "♦", 'h': "♥", 's': "♠"}

var symbolSuits = map[string]byte{"♣": 'c', "♦": 'd', "♥": 'h', "♠": 's'}

const rankOrder = "AKQJT98765432"

const suitOrder = "cdhs"

// SuitSymbol returns the glyph for a suit letter, or the letter itself.
func SuitSymbol(suit byte) string {
	if s, ok := suitSymbols[suit]; ok {
		return s
	}
	return string(suit)
}

// FormatCard renders "Ah" as "A♥". Anything that is not a two-letter card is
// returned unchanged.
func FormatCard(card string) string {
	if len(card) != 2 {
		return card
	}
	return card[:1] + SuitSymbol(card[1])
}

// FormatBoard renders a concatenated board such as "AhKd7c" as "A♥ K♦ 7♣".
func FormatBoard(board string) string {
	if board == "" {
		return ""
	}
	parts := make([]string, 0, len(board)/2)
	for i := 0; i+1 < len(board); i += 2 {
		parts = append(parts, FormatCard(board[i:i+2]))
	}
	return strings.Join(parts, " ")
}

// NormalizeCard maps the spellings users and solvers produce ("AH", "a♥",
// "10h") to the canonical rank-upper, suit-lower form ("Ah", "Th").
func NormalizeCard(card string) string {
	card = strings.TrimSpace(card)
	if strings.HasPrefix(card, "10") {
		card = "T" + card[2:]
	}
	if card == "" {
		return card
	}
	rank := strings.ToUpper(card[:1])
	rest := card[1:]
	if s, ok := symbolSuits[rest]; ok {
		return rank + string(s)
	}
	return rank + strings.ToLower(rest)
}

// SortCards orders cards by rank (ace high first) then suit (clubs,
// diamonds, hearts, spades). Unrecognised cards sort last, lexically.
func SortCards(cards []string) {
	sort.SliceStable(cards, func(i, j int) bool {
		ri, si := cardOrder(cards[i])
		rj, sj := cardOrder(cards[j])
		if ri != rj {
			return ri < rj
		}
		if si != sj {
			return si < sj
		}
		return cards[i] < cards[j]
	})
}

func cardOrder(card string) (int, int) {
	if len(card) != 2 {
		return len(rankOrder), len(suitOrder)
	}
	r := strings.IndexByte(rankOrder, card[0])
	s := strings.IndexByte(suitOrder, card[1])
	if r < 0 {
		r = len(rankOrder)
	}
	if s < 0 {
		s = len(suitOrder)
	}
	return r, s
}

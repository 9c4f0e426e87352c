// Package domain defines the core business entities of the sync core:
// decks, cards, ratings, streak data and study sessions.
package domain

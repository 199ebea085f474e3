package domain

const (
	// DeckSize is the number of cards in a standard deck.
	DeckSize = 52
	// FoundationCount is the number of suit-building piles.
	FoundationCount = 4
	// TableauCount is the number of build piles dealt in a triangle.
	TableauCount = 7
	// TableauDealCount is the number of cards dealt into the tableaus (1+2+...+7).
	TableauDealCount = TableauCount * (TableauCount + 1) / 2
	// StockDealCount is the number of cards left face-down in the stock after the deal.
	StockDealCount = DeckSize - TableauDealCount
)

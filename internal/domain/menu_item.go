package domain

type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	PriceUSD    string `json:"price_usd"`
}

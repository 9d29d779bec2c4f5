package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

const (
	KnowledgeSourceMenu   = "menu"
	KnowledgeSourceReview = "review"
)

// KnowledgeEntry es una fila indexada de la base de conocimiento: un plato
// del menu o una resena de clientes, con su texto renderizado y embedding.
type KnowledgeEntry struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Name      string          `json:"name,omitempty"`
	Category  string          `json:"category,omitempty"`
	PriceUSD  string          `json:"price_usd,omitempty"`
	Title     string          `json:"title,omitempty"`
	Date      string          `json:"date,omitempty"`
	Rating    string          `json:"rating,omitempty"`
	Content   string          `json:"content"`
	Embedding pgvector.Vector `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}

// KnowledgeMatch es la vista de un resultado de busqueda que se devuelve al
// modelo: campos segun el tipo mas el texto completo en Detail.
type KnowledgeMatch struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	PriceUSD string `json:"price_usd,omitempty"`
	Title    string `json:"title,omitempty"`
	Date     string `json:"date,omitempty"`
	Rating   string `json:"rating,omitempty"`
	Detail   string `json:"detail"`
}

// Match proyecta la entrada al formato consumido por el modelo.
func (e KnowledgeEntry) Match() KnowledgeMatch {
	if e.Source == KnowledgeSourceMenu {
		return KnowledgeMatch{
			Type:     KnowledgeSourceMenu,
			Name:     e.Name,
			Category: e.Category,
			PriceUSD: e.PriceUSD,
			Detail:   e.Content,
		}
	}
	return KnowledgeMatch{
		Type:   KnowledgeSourceReview,
		Title:  e.Title,
		Date:   e.Date,
		Rating: e.Rating,
		Detail: e.Content,
	}
}

package httpserver

import (
	"errors"
	"net/http"

	"bookcart/internal/domain"

	"github.com/gin-gonic/gin"
)

type productHandlers struct {
	deps Deps
}

type productEntryView struct {
	MerchandiseID string                  `json:"merchandiseId"`
	VariantTitle  string                  `json:"variantTitle"`
	Options       []domain.SelectedOption `json:"options"`
	Product       domain.Product          `json:"product"`
	Price         moneyView               `json:"price"`
	URL           string                  `json:"url"`
}

func toEntryView(entry domain.CatalogEntry) productEntryView {
	return productEntryView{
		MerchandiseID: entry.Merchandise.ID,
		VariantTitle:  entry.Merchandise.Title,
		Options:       entry.Merchandise.SelectedOptions,
		Product:       entry.Product,
		Price:         moneyView{Amount: entry.Price.Amount, CurrencyCode: entry.Price.CurrencyCode},
		URL:           variantURL(entry.Product, entry.Merchandise),
	}
}

func (p *productHandlers) list(c *gin.Context) {
	entries, err := p.deps.Products.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	views := make([]productEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, toEntryView(entry))
	}
	c.JSON(http.StatusOK, gin.H{"products": views})
}

func (p *productHandlers) getByHandle(c *gin.Context) {
	entries, err := p.deps.Products.GetByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case domain.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	variants := make([]productEntryView, 0, len(entries))
	for _, entry := range entries {
		variants = append(variants, toEntryView(entry))
	}
	c.JSON(http.StatusOK, gin.H{
		"product":  entries[0].Product,
		"variants": variants,
	})
}

package httpserver

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"bookcart/internal/domain"
	"bookcart/internal/session"
	cartsvc "bookcart/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type cartHandlers struct {
	deps   Deps
	opts   Options
	logger *log.Logger
}

type moneyView struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type lineView struct {
	ID          string             `json:"id"`
	Quantity    int                `json:"quantity"`
	Cost        moneyView          `json:"cost"`
	Updating    bool               `json:"updating,omitempty"`
	Merchandise domain.Merchandise `json:"merchandise"`
	Product     domain.Product     `json:"product"`
	URL         string             `json:"url"`
}

type cartView struct {
	ID            string    `json:"id"`
	Lines         []lineView `json:"lines"`
	TotalQuantity int       `json:"totalQuantity"`
	Subtotal      moneyView `json:"subtotalAmount"`
	Total         moneyView `json:"totalAmount"`
	TotalTax      moneyView `json:"totalTaxAmount"`
}

type cartResponse struct {
	Cart          *cartView `json:"cart"`
	Notifications []string  `json:"notifications"`
}

func (h *cartHandlers) attach(c *gin.Context) (*cartsvc.Handle, *session.Cookie, string) {
	cookie := session.NewCookie(c, h.opts.CookieMaxAge, h.opts.CookieSecure)
	id, _ := cookie.Get()
	return h.deps.Carts.Attach(id), cookie, id
}

// persist mirrors a freshly created cart ID into the browser cookie and
// registers the handle so later requests converge on the same view.
func (h *cartHandlers) persist(handle *cartsvc.Handle, cookie *session.Cookie, prevID string) {
	id := handle.Sync.CartID()
	if id == "" || id == prevID {
		return
	}
	if err := cookie.Set(id); err != nil {
		h.logger.Printf("set cart cookie: %v", err)
	}
	h.deps.Carts.Remember(handle)
}

func (h *cartHandlers) getCart(c *gin.Context) {
	handle, cookie, prevID := h.attach(c)
	if err := handle.Sync.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.persist(handle, cookie, prevID)
	c.JSON(http.StatusOK, cartResponse{
		Cart:          toCartView(handle.Sync.Cart()),
		Notifications: notifications(handle),
	})
}

type addLineRequest struct {
	MerchandiseID string `json:"merchandiseId"`
}

func (h *cartHandlers) addLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	entry, err := h.deps.Products.GetByMerchandise(c.Request.Context(), req.MerchandiseID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown merchandise"})
		case domain.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	handle, cookie, prevID := h.attach(c)
	if err := handle.Sync.AddItem(c.Request.Context(), entry.Merchandise, entry.Product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The very first mutation of a session must settle so the cart ID
	// exists before the response cookie is written.
	if prevID == "" {
		handle.Sync.Wait()
	}
	h.persist(handle, cookie, prevID)
	c.JSON(http.StatusOK, cartResponse{
		Cart:          toCartView(handle.Sync.Cart()),
		Notifications: notifications(handle),
	})
}

type updateLineRequest struct {
	Delta int `json:"delta"`
}

func (h *cartHandlers) updateLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	handle, cookie, prevID := h.attach(c)
	if err := handle.Sync.UpdateItemQuantity(c.Request.Context(), c.Param("lineId"), req.Delta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.persist(handle, cookie, prevID)
	c.JSON(http.StatusOK, cartResponse{
		Cart:          toCartView(handle.Sync.Cart()),
		Notifications: notifications(handle),
	})
}

func (h *cartHandlers) removeLine(c *gin.Context) {
	handle, cookie, prevID := h.attach(c)
	if err := handle.Sync.RemoveItem(c.Request.Context(), c.Param("lineId")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.persist(handle, cookie, prevID)
	c.JSON(http.StatusOK, cartResponse{
		Cart:          toCartView(handle.Sync.Cart()),
		Notifications: notifications(handle),
	})
}

func notifications(handle *cartsvc.Handle) []string {
	msgs := handle.Notices.Drain()
	if msgs == nil {
		msgs = []string{}
	}
	return msgs
}

func toCartView(cart *domain.Cart) *cartView {
	if cart == nil {
		return nil
	}
	lines := make([]lineView, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, lineView{
			ID:          line.ID,
			Quantity:    line.Quantity,
			Cost:        moneyView{Amount: line.Cost.Amount, CurrencyCode: line.Cost.CurrencyCode},
			Updating:    !line.Cost.Known(),
			Merchandise: line.Merchandise,
			Product:     line.Product,
			URL:         variantURL(line.Product, line.Merchandise),
		})
	}
	return &cartView{
		ID:            cart.ID,
		Lines:         lines,
		TotalQuantity: cart.TotalQuantity,
		Subtotal:      moneyView{Amount: cart.Cost.SubtotalAmount.Amount, CurrencyCode: cart.Cost.SubtotalAmount.CurrencyCode},
		Total:         moneyView{Amount: cart.Cost.TotalAmount.Amount, CurrencyCode: cart.Cost.TotalAmount.CurrencyCode},
		TotalTax:      moneyView{Amount: cart.Cost.TotalTaxAmount.Amount, CurrencyCode: cart.Cost.TotalTaxAmount.CurrencyCode},
	}
}

// variantURL rebuilds the product page link with the variant's selected
// options as query parameters.
func variantURL(product domain.Product, merch domain.Merchandise) string {
	u := "/product/" + product.Handle
	if len(merch.SelectedOptions) == 0 {
		return u
	}
	q := url.Values{}
	for _, opt := range merch.SelectedOptions {
		q.Set(opt.Name, opt.Value)
	}
	return u + "?" + q.Encode()
}

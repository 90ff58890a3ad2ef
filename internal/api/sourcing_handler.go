package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/service/sourcing"
)

type SourcingHandler struct {
	sourcing *sourcing.Service
	logger   *zap.Logger
}

func NewSourcingHandler(s *sourcing.Service, logger *zap.Logger) *SourcingHandler {
	return &SourcingHandler{sourcing: s, logger: logger}
}

type rfqRequest struct {
	Quantity   int      `json:"quantity" binding:"required,gt=0"`
	Materials  string   `json:"materials" binding:"required"`
	TargetCost *float64 `json:"targetCost" binding:"omitempty,gte=0"`
	DueDate    *string  `json:"dueDate"`
	Notes      *string  `json:"notes"`
}

type requestQuotesRequest struct {
	RFQ         rfqRequest `json:"rfq"`
	SupplierIDs []string   `json:"supplierIds" binding:"required,min=1,dive,uuid"`
}

type submitQuoteRequest struct {
	Quote struct {
		Price        *float64 `json:"price" binding:"required,gte=0"`
		Currency     string   `json:"currency"`
		LeadTimeDays int      `json:"leadTimeDays" binding:"required,gt=0"`
		Notes        *string  `json:"notes"`
	} `json:"quoteJson"`
}

type quoteStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=shortlisted rejected"`
}

// Search handles GET /suppliers/search?category=&location=&q=
func (h *SourcingHandler) Search(c *gin.Context) {
	rows, err := h.sourcing.SearchSuppliers(c.Request.Context(), model.SupplierFilter{
		Category: c.Query("category"),
		Location: c.Query("location"),
		Query:    c.Query("q"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Suggest handles GET /suppliers/suggest/:projectId?category=
func (h *SourcingHandler) Suggest(c *gin.Context) {
	rows, err := h.sourcing.SuggestSuppliers(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// RequestQuotes handles POST /quotes/projects/:projectId/rfq
func (h *SourcingHandler) RequestQuotes(c *gin.Context) {
	var req requestQuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	quotes, err := h.sourcing.RequestQuotes(c.Request.Context(), sourcingCaller(c), c.Param("projectId"), model.RFQ{
		Quantity:   req.RFQ.Quantity,
		Materials:  req.RFQ.Materials,
		TargetCost: req.RFQ.TargetCost,
		DueDate:    req.RFQ.DueDate,
		Notes:      req.RFQ.Notes,
	}, req.SupplierIDs)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, quotes)
}

// ListQuotes handles GET /quotes/by-project/:projectId
func (h *SourcingHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.sourcing.ListQuotes(c.Request.Context(), sourcingCaller(c), c.Param("projectId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

// Submit handles POST /quotes/:id/submit
func (h *SourcingHandler) Submit(c *gin.Context) {
	var req submitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	q, err := h.sourcing.SubmitQuote(c.Request.Context(), sourcingCaller(c), c.Param("id"), model.QuoteOffer{
		Price:        *req.Quote.Price,
		Currency:     req.Quote.Currency,
		LeadTimeDays: req.Quote.LeadTimeDays,
		Notes:        req.Quote.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// SetStatus handles PATCH /quotes/:id
func (h *SourcingHandler) SetStatus(c *gin.Context) {
	var req quoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	q, err := h.sourcing.SetStatus(c.Request.Context(), sourcingCaller(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func sourcingCaller(c *gin.Context) sourcing.Caller {
	return sourcing.Caller{UserID: userID(c), Role: Role(c)}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/exchange"
	"fintrack/internal/validator"
)

// RateHandler proxies exchange rate lookups to the upstream provider.
type RateHandler struct {
	client *exchange.Client
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(client *exchange.Client) *RateHandler {
	return &RateHandler{client: client}
}

// GetLatest returns the latest rates for a base currency
// @Summary     Latest exchange rates
// @Description Get the upstream provider's latest rates for a base currency
// @Tags        rates
// @Produce     json
// @Security    BearerAuth
// @Param       currency path string true "Base currency code"
// @Success     200 {object} map[string]interface{} "Latest rates"
// @Failure     400 {object} ErrorResponse "Invalid currency"
// @Failure     502 {object} ErrorResponse "Exchange rate unavailable"
// @Router      /rates/latest/{currency} [get]
func (h *RateHandler) GetLatest(c *gin.Context) {
	currency := c.Param("currency")
	if !validator.IsValidCurrency(currency) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid currency code"))
		return
	}

	rates, err := h.client.GetLatest(c.Request.Context(), currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rates)
}

// GetPair returns the conversion rate between two currencies
// @Summary     Pair conversion rate
// @Description Get the conversion rate from one currency to another
// @Tags        rates
// @Produce     json
// @Security    BearerAuth
// @Param       from path string true "Source currency code"
// @Param       to   path string true "Target currency code"
// @Success     200 {object} map[string]interface{} "Conversion rate"
// @Failure     400 {object} ErrorResponse "Invalid currency"
// @Failure     502 {object} ErrorResponse "Exchange rate unavailable"
// @Router      /rates/pair/{from}/{to} [get]
func (h *RateHandler) GetPair(c *gin.Context) {
	from, to := c.Param("from"), c.Param("to")
	if !validator.IsValidCurrency(from) || !validator.IsValidCurrency(to) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid currency code"))
		return
	}

	rate, err := h.client.GetRate(c.Request.Context(), from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"base_code":       from,
		"target_code":     to,
		"conversion_rate": rate,
	})
}

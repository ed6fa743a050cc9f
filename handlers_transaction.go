package main

import (
	"net/http"

	"budgeter/pkg/ledger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// amounts go over the wire as JSON numbers
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type transactionCreateRequest struct {
	Amount     *decimal.Decimal `json:"amount" binding:"required"`
	Note       *string          `json:"note" binding:"required"`
	CategoryID *uint            `json:"category_id" binding:"required"`
}

type transactionUpdateRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Note   *string          `json:"note" binding:"required"`
}

func (a *app) allTransactionsHandler(c *gin.Context) {
	txns, err := a.transactions.All(c.Request.Context())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (a *app) listTransactionsHandler(c *gin.Context) {
	txns, err := a.transactions.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (a *app) getTransactionHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := a.transactions.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *app) createTransactionHandler(c *gin.Context) {
	var req transactionCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := a.transactions.Create(c.Request.Context(), currentUserID(c), ledger.TransactionInput{
		Amount:     *req.Amount,
		Note:       *req.Note,
		CategoryID: *req.CategoryID,
	})
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (a *app) updateTransactionHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req transactionUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := a.transactions.Update(c.Request.Context(), currentUserID(c), id, ledger.TransactionUpdate{
		Amount: *req.Amount,
		Note:   *req.Note,
	})
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *app) deleteTransactionHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.transactions.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		a.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

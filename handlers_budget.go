package main

import (
	"net/http"

	"budgeter/pkg/ledger"

	"github.com/gin-gonic/gin"
)

type budgetRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

func (a *app) allBudgetsHandler(c *gin.Context) {
	budgets, err := a.budgets.All(c.Request.Context())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func (a *app) getBudgetHandler(c *gin.Context) {
	b, err := a.budgets.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (a *app) createBudgetHandler(c *gin.Context) {
	var req budgetRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := a.budgets.Create(c.Request.Context(), currentUserID(c), ledger.BudgetInput{Amount: *req.Amount})
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (a *app) updateBudgetHandler(c *gin.Context) {
	var req budgetRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := a.budgets.Update(c.Request.Context(), currentUserID(c), ledger.BudgetInput{Amount: *req.Amount})
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (a *app) deleteBudgetHandler(c *gin.Context) {
	if err := a.budgets.Delete(c.Request.Context(), currentUserID(c)); err != nil {
		a.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

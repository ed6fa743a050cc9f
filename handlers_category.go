package main

import (
	"net/http"

	"budgeter/pkg/ledger"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name   *string `json:"name" binding:"required"`
	Amount *int64  `json:"amount" binding:"required"`
}

func (r categoryRequest) input() ledger.CategoryInput {
	return ledger.CategoryInput{Name: *r.Name, Amount: *r.Amount}
}

func (a *app) allCategoriesHandler(c *gin.Context) {
	cats, err := a.categories.All(c.Request.Context())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (a *app) listCategoriesHandler(c *gin.Context) {
	cats, err := a.categories.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (a *app) createCategoryHandler(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := a.categories.Create(c.Request.Context(), currentUserID(c), req.input())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (a *app) updateCategoryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := a.categories.Update(c.Request.Context(), currentUserID(c), id, req.input())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (a *app) deleteCategoryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.categories.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		a.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

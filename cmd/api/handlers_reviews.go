package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/review"
)

func createReviewHandler(svc *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in review.Request
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		r, err := svc.Create(c.Request.Context(), httpx.UserID(c), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func productReviewsHandler(svc *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ForProduct(c.Request.Context(), c.Param("productId"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// userReviewsHandler lists a user's reviews; customers only see their own.
func userReviewsHandler(svc *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if !httpx.IsAdmin(c) && userID != httpx.UserID(c) {
			httpx.Fail(c, httpx.ErrForbidden)
			return
		}
		list, err := svc.ForUser(c.Request.Context(), userID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func updateReviewHandler(svc *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in review.UpdateRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		r, err := svc.Update(c.Request.Context(), c.Param("id"), httpx.UserID(c), httpx.IsAdmin(c), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func deleteReviewHandler(svc *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), httpx.UserID(c), httpx.IsAdmin(c)); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

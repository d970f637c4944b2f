package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafeteria-api/internal/cancellation"
	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/order"
)

func withItems(ctx context.Context, repo order.Repository, orders []order.Order) ([]order.Order, error) {
	if orders == nil {
		return []order.Order{}, nil
	}
	for i := range orders {
		items, err := repo.GetItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func listOrders(c *gin.Context, repo order.Repository, q order.ListQuery) {
	q.Limit, q.Offset = pageParams(c)
	if s := c.Query("status"); s != "" {
		st, err := order.ParseStatus(s)
		if err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		q.Status = st
	}
	ctx := c.Request.Context()
	orders, err := repo.List(ctx, q)
	if err == nil {
		orders, err = withItems(ctx, repo, orders)
	}
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order.ListResponse{Limit: q.Limit, Offset: q.Offset, Items: orders})
}

func myOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		listOrders(c, repo, order.ListQuery{UserID: httpx.UserID(c)})
	}
}

func adminOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		listOrders(c, repo, order.ListQuery{UserID: c.Query("user_id")})
	}
}

// getOrderHandler hides other users' orders behind a 404.
func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if o.UserID != httpx.UserID(c) && !httpx.IsAdmin(c) {
			httpx.Fail(c, order.ErrNotFound)
			return
		}
		o.Items = items
		c.JSON(http.StatusOK, o)
	}
}

func updateStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&in); err != nil || in.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		o, err := svc.SetStatus(c.Request.Context(), c.Param("id"), in.Status)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// cancelOrderHandler cancels as the caller. An admin may act for the user
// named in the body.
func cancelOrderHandler(svc *cancellation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cancellation.Request
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		uid := httpx.UserID(c)
		if in.UserID != "" && in.UserID != uid {
			if !httpx.IsAdmin(c) {
				httpx.Fail(c, httpx.ErrForbidden)
				return
			}
			uid = in.UserID
		}
		res, err := svc.Cancel(c.Request.Context(), uid, in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

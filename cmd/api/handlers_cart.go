package main

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafeteria-api/internal/cart"
	"github.com/MikeMC777/cafeteria-api/internal/httpx"
)

// ownerFunc picks the cart owner: the session id for the temp cart, the
// authenticated user for the persistent one. fromBody is the session id
// sent in a JSON body, if any.
type ownerFunc func(c *gin.Context, fromBody string) string

func sessionOwner(c *gin.Context, fromBody string) string {
	for _, v := range []string{fromBody, c.Query("session_id"), c.GetHeader("X-Session-ID")} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func userOwner(c *gin.Context, _ string) string { return httpx.UserID(c) }

func addToCartHandler(svc *cart.Service, scope cart.Scope, owner ownerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.AddRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		if strings.TrimSpace(in.ProductID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
			return
		}
		count, err := svc.AddLine(c.Request.Context(), scope, owner(c, in.SessionID), in.ProductID, in.Quantity)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func getCartHandler(svc *cart.Service, scope cart.Scope, owner ownerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := svc.Lines(c.Request.Context(), scope, owner(c, ""))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, cart.NewView(lines))
	}
}

func cartCountHandler(svc *cart.Service, scope cart.Scope, owner ownerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.Count(c.Request.Context(), scope, owner(c, ""))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	}
}

func setCartQuantityHandler(svc *cart.Service, scope cart.Scope, owner ownerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.QuantityRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		ctx := c.Request.Context()
		who := owner(c, in.SessionID)
		if err := svc.SetQuantity(ctx, scope, who, c.Param("lineId"), in.Quantity); err != nil {
			httpx.Fail(c, err)
			return
		}
		lines, err := svc.Lines(ctx, scope, who)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, cart.NewView(lines))
	}
}

func removeCartLineHandler(svc *cart.Service, scope cart.Scope, owner ownerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.RemoveLine(c.Request.Context(), scope, owner(c, ""), c.Param("lineId")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func clearCartHandler(svc *cart.Service, scope cart.Scope, owner ownerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), scope, owner(c, "")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// transferCartHandler runs after login to move the anonymous cart over.
func transferCartHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.TransferRequest
		// the session id may come from the query or header alone
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		moved, err := svc.Transfer(c.Request.Context(), sessionOwner(c, in.SessionID), httpx.UserID(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"moved": moved})
	}
}

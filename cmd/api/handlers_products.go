package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/product"
)

// pageParams reads limit/offset with defaults 20/0; limit is capped at 100.
func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func listOnlyHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		featured, _ := strconv.ParseBool(c.Query("featured"))
		items, err := repo.List(c.Request.Context(), product.Query{
			Category: c.Query("category"),
			Featured: featured,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if items == nil {
			items = []product.Product{}
		}
		c.JSON(http.StatusOK, product.ListResponse{Limit: limit, Offset: offset, Items: items})
	}
}

func searchHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if len([]rune(q)) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q must have at least 2 characters"})
			return
		}
		limit, offset := pageParams(c)
		items, err := repo.List(c.Request.Context(), product.Query{
			Q:        q,
			Category: c.Query("category"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if items == nil {
			items = []product.Product{}
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.CreateProductRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		name := strings.TrimSpace(in.Name)
		if name == "" || in.Price == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and price are required"})
			return
		}
		p := &product.Product{
			ID:          uuid.NewString(),
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Price:       in.Price.Int64(),
			Category:    strings.TrimSpace(in.Category),
			Image:       strings.TrimSpace(in.Image),
			Available:   in.Available == nil || *in.Available,
			Featured:    in.Featured,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler applies only the fields present in the body.
func updateProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.UpdateProductRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		ctx := c.Request.Context()
		p, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if v := strings.TrimSpace(in.Name); v != "" {
			p.Name = v
		}
		if v := strings.TrimSpace(in.Description); v != "" {
			p.Description = v
		}
		if in.Price != nil {
			p.Price = in.Price.Int64()
		}
		if v := strings.TrimSpace(in.Category); v != "" {
			p.Category = v
		}
		if v := strings.TrimSpace(in.Image); v != "" {
			p.Image = v
		}
		if in.Available != nil {
			p.Available = *in.Available
		}
		if in.Featured != nil {
			p.Featured = *in.Featured
		}
		if err := repo.Update(ctx, p); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, product.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

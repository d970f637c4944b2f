package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafeteria-api/internal/address"
	"github.com/MikeMC777/cafeteria-api/internal/httpx"
)

func listAddressesHandler(svc *address.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), httpx.UserID(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if list == nil {
			list = []address.Address{}
		}
		c.JSON(http.StatusOK, list)
	}
}

func addAddressHandler(svc *address.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in address.Request
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		a, err := svc.Add(c.Request.Context(), httpx.UserID(c), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

func updateAddressHandler(svc *address.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in address.Request
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		a, err := svc.Update(c.Request.Context(), httpx.UserID(c), c.Param("id"), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

func deleteAddressHandler(svc *address.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), httpx.UserID(c), c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

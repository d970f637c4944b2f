package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/reservation"
)

// createReservationHandler is public; a signed-in caller is recorded on the booking.
func createReservationHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in reservation.Request
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

func listReservationsHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := reservation.Query{
			Date:   c.Query("date"),
			Status: reservation.Status(c.Query("status")),
		}
		list, err := svc.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func getReservationHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func updateReservationHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in reservation.UpdateRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		r, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func deleteReservationHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

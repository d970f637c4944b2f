package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/invoice"
	"github.com/MikeMC777/cafeteria-api/internal/receipt"
)

func invoicePDFHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderId")
		pdf, err := svc.PDF(c.Request.Context(), id, httpx.UserID(c), httpx.IsAdmin(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+receipt.Filename(id)+`"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}

// ticketHandler serves the purchase ticket; orders without a shipping
// address print as store pickup.
func ticketHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		pdf, err := svc.Ticket(c.Request.Context(), id, httpx.UserID(c), httpx.IsAdmin(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+receipt.TicketFilename(id)+`"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}

type emailInvoiceRequest struct {
	Email string `json:"email"`
}

func invoiceEmailHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in emailInvoiceRequest
		// body is optional; the account email is the default
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		to, err := svc.Email(c.Request.Context(), c.Param("orderId"), httpx.UserID(c), httpx.IsAdmin(c), in.Email)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sent_to": to})
	}
}

package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/MikeMC777/cafeteria-api/internal/checkout"
	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/payprovider"
)

// max webhook body accepted
const maxWebhookBody = 64 << 10

func createIntentHandler(rec *checkout.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.IntentRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		// a signed-in caller cannot create intents for someone else
		uid := httpx.UserID(c)
		if uid != "" && in.UserID != "" && in.UserID != uid && !httpx.IsAdmin(c) {
			httpx.Fail(c, httpx.ErrForbidden)
			return
		}
		out, err := rec.CreateIntent(c.Request.Context(), uid, in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// checkoutHandler answers 201 when this call created the order and 200 when
// it had already been recorded.
func checkoutHandler(rec *checkout.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.Request
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, errors.Join(httpx.ErrBadRequest, err))
			return
		}
		res, err := rec.Checkout(c.Request.Context(), httpx.UserID(c), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		status := http.StatusOK
		if res.Outcome == checkout.OutcomeCreated || res.Outcome == checkout.OutcomeResumed {
			status = http.StatusCreated
		}
		c.JSON(status, res)
	}
}

// webhookHandler needs the raw body for the signature. Any failure other
// than a bad signature answers 500 so the processor redelivers; permanent
// faults come back from the reconciler as an outcome, not an error.
func webhookHandler(rec *checkout.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
		payload, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		res, err := rec.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		switch {
		case errors.Is(err, payprovider.ErrInvalidSignature):
			log.Warn().Str("rid", httpx.RID(c)).Msg("[webhook] invalid signature")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		case err != nil:
			log.Error().Err(err).Str("rid", httpx.RID(c)).Msg("[webhook] processing failed, asking for redelivery")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		default:
			c.JSON(http.StatusOK, gin.H{"received": true, "outcome": res.Outcome})
		}
	}
}

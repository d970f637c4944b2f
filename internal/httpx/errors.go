package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MikeMC777/cafeteria-api/internal/address"
	"github.com/MikeMC777/cafeteria-api/internal/cancellation"
	"github.com/MikeMC777/cafeteria-api/internal/cart"
	"github.com/MikeMC777/cafeteria-api/internal/checkout"
	"github.com/MikeMC777/cafeteria-api/internal/invoice"
	"github.com/MikeMC777/cafeteria-api/internal/money"
	"github.com/MikeMC777/cafeteria-api/internal/notify"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/payment"
	"github.com/MikeMC777/cafeteria-api/internal/payprovider"
	"github.com/MikeMC777/cafeteria-api/internal/product"
	"github.com/MikeMC777/cafeteria-api/internal/reservation"
	"github.com/MikeMC777/cafeteria-api/internal/review"
	"github.com/MikeMC777/cafeteria-api/internal/stats"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// development adds raw error text to 5xx responses.
var development bool

func SetDevelopment(v bool) { development = v }

var statusOf = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		ErrBadRequest, money.ErrInvalidAmount, checkout.ErrInvalidRequest, cancellation.ErrInvalidRequest,
		cart.ErrInvalidQuantity, cart.ErrMissingOwner, cart.ErrUnavailable, address.ErrInvalidInput,
		user.ErrInvalidInput, stats.ErrInvalidPeriod, notify.ErrNoRecipient, payprovider.ErrInvalidSignature,
		order.ErrInvalidItem, review.ErrInvalidInput, reservation.ErrInvalidInput,
	}},
	{http.StatusUnauthorized, []error{ErrUnauthorized, user.ErrInvalidCredentials, user.ErrInvalidToken}},
	{http.StatusPaymentRequired, []error{checkout.ErrPaymentNotConfirmed}},
	{http.StatusForbidden, []error{ErrForbidden, invoice.ErrForbidden, review.ErrForbidden}},
	{http.StatusNotFound, []error{
		order.ErrNotFound, payment.ErrNotFound, product.ErrNotFound, cart.ErrNotFound,
		address.ErrNotFound, user.ErrNotFound, payprovider.ErrNotFound,
		review.ErrNotFound, reservation.ErrNotFound,
	}},
	{http.StatusConflict, []error{
		cancellation.ErrNotRefundable, order.ErrInvalidTransition, order.ErrStale,
		user.ErrAlreadyExist, checkout.ErrEmptyCart,
	}},
	{http.StatusUnprocessableEntity, []error{checkout.ErrAmountMismatch}},
}

// StatusFor maps a sentinel to its HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	for _, s := range statusOf {
		for _, target := range s.errs {
			if errors.Is(err, target) {
				return s.status
			}
		}
	}
	return http.StatusInternalServerError
}

// Fail writes err as JSON. Internal errors are logged with an opaque
// reference and only that reference goes to the client.
func Fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status < http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	ref := uuid.NewString()
	log.Error().Err(err).Str("rid", RID(c)).Str("ref", ref).Str("path", c.Request.URL.Path).Msg("[http] internal error")
	body := gin.H{"error": "internal error", "ref": ref}
	if development {
		body["detail"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

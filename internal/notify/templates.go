package notify

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/MikeMC777/cafeteria-api/internal/money"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": money.Format,
}).ParseFS(templateFS, "templates/*.html"))

type Line struct {
	Name     string
	Quantity int
	Price    int64
	Subtotal int64
}

type OrderMail struct {
	Business string
	Customer string
	OrderID  string
	Total    int64
	Currency string
	Items    []Line
}

// Render executes one of the embedded templates.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func OrderConfirmation(d OrderMail) (string, error) { return Render("confirmation.html", d) }

func Invoice(d OrderMail) (string, error) { return Render("invoice.html", d) }

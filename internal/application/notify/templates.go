package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/pkg/money"
)

// Plantillas de correo transaccional.
const (
	TemplateOrderPlaced    = "ORDER_PLACED"
	TemplateOrderDelivered = "ORDER_DELIVERED"
	TemplateOrderCancelled = "ORDER_CANCELLED"
)

type mailLine struct {
	Name     string
	Quantity int
	Total    string
}

type mailData struct {
	Name        string
	OrderNumber int64
	Status      string
	Address     string
	OrderPerson string
	Lines       []mailLine
	Total       string
	Headline    string
}

var subjects = map[string]string{
	TemplateOrderPlaced:    "Order #%d placed",
	TemplateOrderDelivered: "Order #%d delivered",
	TemplateOrderCancelled: "Order #%d cancelled",
}

var headlines = map[string]string{
	TemplateOrderPlaced:    "Thanks for your order! We have received it and will start preparing it shortly.",
	TemplateOrderDelivered: "Your order has been delivered. Enjoy your snacks!",
	TemplateOrderCancelled: "Your order has been cancelled.",
}

var orderTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Order #{{.OrderNumber}}</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hi {{.Name}},</p>
  <p>{{.Headline}}</p>
  <p><strong>Order #{{.OrderNumber}}</strong> &middot; {{.Status}}</p>
  <table cellpadding="4" style="border-collapse: collapse;">
    {{range .Lines}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td align="right">{{.Total}}</td></tr>
    {{end}}<tr><td colspan="2"><strong>Total</strong></td><td align="right"><strong>{{.Total}}</strong></td></tr>
  </table>
  <p>Deliver to: {{.OrderPerson}}, {{.Address}}</p>
</body>
</html>`))

// Render produce asunto y cuerpo HTML del correo.
func Render(templateName, recipientName string, o *dto.OrderResponse) (subject, html string, err error) {
	format, ok := subjects[templateName]
	if !ok {
		return "", "", fmt.Errorf("notify: plantilla desconocida %q", templateName)
	}
	if o == nil {
		return "", "", fmt.Errorf("notify: pedido requerido")
	}
	data := mailData{
		Name:        recipientName,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Address:     o.Address,
		OrderPerson: o.OrderPerson,
		Total:       money.Format(o.Summary.Subtotal),
		Headline:    headlines[templateName],
	}
	for _, l := range o.Products {
		name := l.ProductID
		if l.Product != nil {
			name = l.Product.Name
		}
		data.Lines = append(data.Lines, mailLine{Name: name, Quantity: l.Quantity, Total: money.Format(l.Total)})
	}
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("notify: render: %w", err)
	}
	return fmt.Sprintf(format, o.OrderNumber), buf.String(), nil
}

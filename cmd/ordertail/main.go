// ordertail muestra en la terminal los pedidos pendientes y se actualiza en vivo con el
// canal SSE de la API. Pantalla de despacho para el personal.
//
// Uso: go run ./cmd/ordertail -url http://localhost:8080 -token <JWT>
// El token también se puede pasar en ORDERTAIL_TOKEN.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/pkg/logger"
	"github.com/jhoicas/snacks-api/pkg/money"
	"github.com/jhoicas/snacks-api/pkg/orderstream"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "URL base de la API")
	token := flag.String("token", os.Getenv("ORDERTAIL_TOKEN"), "JWT de un usuario EMPLOYEE o ADMIN")
	level := flag.String("log", "warn", "nivel de log")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "falta el token: -token o ORDERTAIL_TOKEN")
		os.Exit(2)
	}

	log := logger.New(logger.Config{Env: "development", Level: *level, Output: os.Stderr})
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := orderstream.New(orderstream.Config{BaseURL: *baseURL, Token: *token}, log.Component("orderstream"))
	err := client.Run(ctx, func(orders []dto.OrderResponse) {
		render(os.Stdout, orders, time.Now())
	})
	if err != nil {
		log.Error().Err(err).Msg("ordertail")
		os.Exit(1)
	}
}

// render limpia la pantalla y dibuja la tabla de pendientes.
func render(w io.Writer, orders []dto.OrderResponse, now time.Time) {
	fmt.Fprint(w, "\033[H\033[2J")
	fmt.Fprintf(w, "Pedidos pendientes: %d  (%s)\n\n", len(orders), now.Format("15:04:05"))
	writeTable(w, orders, now)
}

func writeTable(w io.Writer, orders []dto.OrderResponse, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tHACE\tCONTACTO\tTELÉFONO\tDIRECCIÓN\tUDS\tTOTAL\tVENDOR")
	for _, o := range orders {
		vendor := "-"
		if o.Vendor != nil {
			vendor = o.Vendor.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			o.OrderNumber, age(now.Sub(o.CreatedAt)), o.OrderPerson, o.PhoneNumber, o.Address,
			o.Summary.TotalQuantity, money.Format(o.Summary.Subtotal), vendor)
	}
	_ = tw.Flush()
}

func age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "ahora"
	case d < time.Hour:
		return fmt.Sprintf("%d min", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/langowen/converter/deploy/config"
	"github.com/langowen/converter/internal/rate_provider/app"
)

func main() {
	amount := flag.String("amount", "100", "amount in the source currency")
	from := flag.String("from", "USD", "source currency code")
	to := flag.String("to", "", "comma separated target codes (default PROVIDER_CURRENCIES)")
	watch := flag.Bool("watch", false, "keep refreshing until interrupted")
	interactive := flag.Bool("i", false, "edit the board from the keyboard (implies refreshing)")
	flag.Parse()

	cfg := config.NewConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var targets []string
	if *to != "" {
		targets = strings.Split(*to, ",")
	}

	err := app.NewApp(cfg, os.Stdin, os.Stdout).Run(ctx, app.Options{
		Amount:      *amount,
		From:        *from,
		To:          targets,
		Watch:       *watch,
		Interactive: *interactive,
	})
	if err != nil {
		log.Fatal(err)
	}
}

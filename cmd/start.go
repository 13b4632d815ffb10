package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/harborline/checkoutd/api"
	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/notifications"
	"github.com/harborline/checkoutd/paymentrequest"
	"github.com/harborline/checkoutd/provider"
	"github.com/harborline/checkoutd/repo"
	"github.com/harborline/checkoutd/version"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("CMD")

// Start is the main entry point for checkoutd. The options to this command
// are the same as the checkoutd config options.
type Start struct {
	repo.Config
}

// Execute starts the checkoutd server.
func (x *Start) Execute(args []string) error {
	cfg, err := repo.LoadConfig()
	if err != nil {
		return err
	}

	r, err := repo.NewRepo(cfg.DataDir)
	if err != nil {
		return err
	}
	defer r.Close()

	checkouts := commerce.NewClient(cfg.CheckoutAPIURL, cfg.CheckoutToken)
	payments := provider.NewClient(cfg.ProviderAPIURL, cfg.ProviderAPIKey)
	bus := events.NewBus()

	manager := paymentrequest.NewManager(r.DB(), checkouts, payments, bus, paymentrequest.Config{
		StoreName:         cfg.StoreName,
		Country:           cfg.Country,
		Locale:            cfg.Locale,
		ShippingCountries: repo.ParseShippingCountries(cfg.ShippingCountries),
	})

	listener, err := net.Listen("tcp", cfg.GatewayAddr)
	if err != nil {
		return err
	}

	allowedIPs := make(map[string]bool)
	gateway, err := api.NewGateway(manager, &api.GatewayConfig{
		Listener:   listener,
		NoCors:     cfg.NoCors,
		AllowedIPs: allowedIPs,
		Username:   cfg.APIUsername,
		Password:   cfg.APIPassword,
		Cookie:     cfg.APICookie,
	})
	if err != nil {
		return err
	}

	notifier := notifications.NewNotifier(bus, r.DB(), gateway.NotifyWebsockets)
	go notifier.Start()
	defer notifier.Stop()

	printSplashScreen()

	go func() {
		if err := gateway.Serve(); err != nil {
			log.Error(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	log.Info("checkoutd shutting down...")
	if err := gateway.Close(); err != nil {
		log.Error(err)
	}
	return nil
}

func printSplashScreen() {
	blue := color.New(color.FgBlue)
	white := color.New(color.FgWhite)

	for i, l := range []string{
		`       _               _               _      _ `,
		`   ___| |__   ___  ___| | _____  _   _| |_ __| |`,
		`  / __| '_ \ / _ \/ __| |/ / _ \| | | | __/ _' |`,
		` | (__| | | |  __/ (__|   < (_) | |_| | || (_| |`,
		`  \___|_| |_|\___|\___|_|\_\___/ \__,_|\__\__,_|`,
	} {
		if i%2 == 0 {
			if _, err := white.Println(l); err != nil {
				log.Debug(err)
				return
			}
			continue
		}
		if _, err := blue.Println(l); err != nil {
			log.Debug(err)
			return
		}
	}

	blue.DisableColor()
	white.DisableColor()
	fmt.Printf("\ncheckoutd v%s\n", version.String())
}

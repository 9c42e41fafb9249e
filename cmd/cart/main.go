package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/app"
	"github.com/nikolayk812/storefront-cart/internal/config"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/handler"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env is what every subcommand runs against: a hydrated cart over the configured storage.
type env struct {
	cfg     config.Config
	logger  *zap.Logger
	cart    *app.Cart
	closeFn func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{}
	err := newRootCmd(e).ExecuteContext(ctx)
	if closeErr := e.close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", closeErr)
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:          "cart",
		Short:        "Inspect and edit the storefront cart kept on this device",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return e.open(cmd.Context())
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newShowCmd(e),
		newAddCmd(e),
		newRemoveCmd(e),
		newUpdateCmd(e),
		newClearCmd(e),
		newServeCmd(e),
	)

	return root
}

func (e *env) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}

	storage, closeFn, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		_ = logger.Sync()
		return fmt.Errorf("app.OpenStorage: %w", err)
	}

	e.cfg = cfg
	e.logger = logger
	e.closeFn = closeFn
	e.cart = app.NewCart(ctx, cfg, storage, logger)

	return nil
}

func (e *env) close() error {
	var errs []error
	if e.closeFn != nil {
		if err := e.closeFn(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if e.logger != nil {
		// stderr sync fails on some terminals
		_ = e.logger.Sync()
	}
	return errors.Join(errs...)
}

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printCart(cmd, e.cart.State(), e.cfg)
			return nil
		},
	}
}

func newAddCmd(e *env) *cobra.Command {
	var (
		price       string
		maxQuantity int
		quantity    int
		display     domain.ProductDisplay
	)

	cmd := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product, capped at its maximum orderable quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("price[%s] is not valid: %w", price, err)
			}
			if unitPrice.IsNegative() {
				return fmt.Errorf("price[%s] must not be negative", price)
			}
			if maxQuantity < 1 {
				return fmt.Errorf("max must be at least 1")
			}

			state := e.cart.AddItem(cmd.Context(), domain.CartLine[domain.ProductDisplay]{
				ProductID:   args[0],
				MaxQuantity: maxQuantity,
				Price:       unitPrice,
				Payload:     display,
			}, quantity)

			printCart(cmd, state, e.cfg)
			return nil
		},
	}

	cmd.Flags().StringVar(&price, "price", "", "unit price")
	cmd.Flags().IntVar(&maxQuantity, "max", 1, "maximum orderable quantity")
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")
	cmd.Flags().StringVar(&display.Name, "name", "", "display name")
	cmd.Flags().StringVar(&display.ImageURL, "image", "", "image URL")
	cmd.Flags().StringVar(&display.CategoryID, "category", "", "category ID")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(cmd, e.cart.RemoveItem(cmd.Context(), args[0]), e.cfg)
			return nil
		},
	}
}

func newUpdateCmd(e *env) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "update PRODUCT_ID",
		Short: "Set the quantity of a product; zero removes it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(cmd, e.cart.UpdateQuantity(cmd.Context(), args[0], quantity), e.cfg)
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 0, "new quantity")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}

func newClearCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printCart(cmd, e.cart.ClearCart(cmd.Context()), e.cfg)
			return nil
		},
	}
}

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart to local storefront views over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			srv := &http.Server{
				Addr:              e.cfg.HTTPAddr,
				Handler:           handler.NewHTTPHandler(e.cart, e.cfg.Currency(), e.logger.Named("http")).Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				e.logger.Info("http server listening", zap.String("addr", e.cfg.HTTPAddr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("srv.ListenAndServe: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("srv.Shutdown: %w", err)
			}

			e.logger.Info("http server stopped")
			return nil
		},
	}
}

func printCart(cmd *cobra.Command, state domain.CartState[domain.ProductDisplay], cfg config.Config) {
	out := cmd.OutOrStdout()

	if len(state.Items) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return
	}

	for _, item := range state.Items {
		name := item.Payload.Name
		if name == "" {
			name = item.ProductID
		}
		subtotal := domain.Money{Amount: item.Price, Currency: cfg.Currency()}.Mul(item.Quantity)
		fmt.Fprintf(out, "%-24s %3d / %-3d  %s\n", name, item.Quantity, item.MaxQuantity, subtotal)
	}
	fmt.Fprintf(out, "%d item(s), total %s\n", state.TotalItems, state.Total(cfg.Currency()))
}

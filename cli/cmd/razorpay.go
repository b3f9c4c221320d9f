package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

var razorpayCmd = &cobra.Command{
	Use:   "razorpay",
	Short: "Configure Razorpay keys and create a test order",
	Long: `Resolves RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET (prompting for any
that are missing) and creates a 1 INR test order to confirm the keys work.

Get your API keys from: ` + probe.RazorpayDashboardURL + `

Examples:
  pizzasetup razorpay
  pizzasetup razorpay order 249.50
  pizzasetup razorpay verify order_IEIaMR65cu6nz3 pay_IH4NVgf4Dreq1l <signature>`,
	Args: cobra.NoArgs,
	RunE: runRazorpay,
}

var razorpayOrderCmd = &cobra.Command{
	Use:   "order <amount>",
	Short: "Create a payment order for an amount in rupees",
	Long: `Creates a Razorpay order. The amount is given in major units
(rupees) and converted to paise. The receipt defaults to order_<unix time>.`,
	Args: cobra.ExactArgs(1),
	RunE: runRazorpayOrder,
}

var razorpayVerifyCmd = &cobra.Command{
	Use:   "verify <order_id> <payment_id> <signature>",
	Short: "Verify a payment signature returned by Razorpay Checkout",
	Args:  cobra.ExactArgs(3),
	RunE:  runRazorpayVerify,
}

var (
	orderCurrency string
	orderReceipt  string
)

func init() {
	razorpayOrderCmd.Flags().StringVar(&orderCurrency, "currency", core.DefaultCurrency, "ISO currency code")
	razorpayOrderCmd.Flags().StringVar(&orderReceipt, "receipt", "", "Receipt id (default: order_<unix time>)")
	razorpayCmd.AddCommand(razorpayOrderCmd)
	razorpayCmd.AddCommand(razorpayVerifyCmd)
	rootCmd.AddCommand(razorpayCmd)
}

// newOrders is replaced in tests.
var newOrders = core.NewRazorpayOrders

func loadRazorpayConfig(cmd *cobra.Command) (core.RazorpayConfig, error) {
	store := openStore(cmd)
	var cfg core.RazorpayConfig
	if err := loadServiceConfig(store, probe.MustGet("razorpay"), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runRazorpay(cmd *cobra.Command, args []string) error {
	header("Razorpay Setup")
	cfg, err := loadRazorpayConfig(cmd)
	if err != nil {
		return err
	}
	success("Razorpay configuration has been saved")

	return core.RunChecks(cmd.Context(), []core.Check{
		{Name: "Razorpay test order", Run: razorpayCheck(cfg)},
	}, probeTimeout(), reportCheck)
}

func razorpayCheck(cfg core.RazorpayConfig) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		order, err := core.CreateOrder(ctx, newOrders(cfg, probeTimeout()), core.TestOrderRequest(time.Now()))
		if err != nil {
			return "", err
		}
		return "Successfully created test order " + order.ID, nil
	}
}

func runRazorpayOrder(cmd *cobra.Command, args []string) error {
	req, err := core.PaymentOrderRequest(args[0], orderCurrency, orderReceipt, time.Now())
	if err != nil {
		return err
	}

	header("Creating payment order")
	cfg, err := loadRazorpayConfig(cmd)
	if err != nil {
		return err
	}

	step("💳", fmt.Sprintf("%d %s (minor units), receipt %s", req.Amount, req.Currency, req.Receipt))
	ctx, cancel := withProbeTimeout(cmd.Context())
	defer cancel()
	order, err := core.CreateOrder(ctx, newOrders(cfg, probeTimeout()), req)
	if err != nil {
		fail(describeError(err))
		return err
	}
	success("Order created")
	fmt.Fprintf(out, "    %s  %s\n", boldStyle.Render("Order ID:"), keyStyle.Render(order.ID))
	if order.Status != "" {
		fmt.Fprintf(out, "    %s    %s\n", boldStyle.Render("Status:"), order.Status)
	}
	fmt.Fprintln(out)
	return nil
}

func runRazorpayVerify(cmd *cobra.Command, args []string) error {
	header("Verifying payment signature")
	cfg, err := loadRazorpayConfig(cmd)
	if err != nil {
		return err
	}

	if !core.VerifyPayment(cfg, args[0], args[1], args[2]) {
		fail("Signature does not match")
		return fmt.Errorf("payment %s: signature verification failed", args[1])
	}
	success(fmt.Sprintf("Payment %s for order %s is authentic", args[1], args[0]))
	return nil
}

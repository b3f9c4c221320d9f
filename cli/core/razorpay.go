package core

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

const (
	razorpayServiceName = "Razorpay"

	DefaultCurrency = "INR"

	// testOrderAmount is 1 INR in paise.
	testOrderAmount = 100

	testOrderNote    = "Test order for Razorpay integration"
	paymentOrderNote = "Pizza Management System Order"
)

// OrderCreator is the part of the Razorpay SDK used to create orders.
// The SDK's Order resource satisfies it.
type OrderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// NewRazorpayOrders returns the order API of an SDK client authenticated with
// cfg. A positive timeout replaces the SDK's default HTTP timeout.
func NewRazorpayOrders(cfg RazorpayConfig, timeout time.Duration) OrderCreator {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	if timeout > 0 {
		client.SetTimeout(sdkTimeout(timeout))
	}
	return client.Order
}

// sdkTimeout converts d to the whole seconds the SDK takes, rounding up.
func sdkTimeout(d time.Duration) int16 {
	secs := (d + time.Second - 1) / time.Second
	if secs > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(secs)
}

// OrderRequest is a payment order to create. Amount is in the smallest
// currency unit (paise for INR).
type OrderRequest struct {
	Amount      int64
	Currency    string
	Receipt     string
	Description string
}

// Order is the subset of a created Razorpay order that the CLI reports.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// TestOrderRequest returns the 1 INR order used by the payment check.
func TestOrderRequest(now time.Time) OrderRequest {
	return OrderRequest{
		Amount:      testOrderAmount,
		Currency:    DefaultCurrency,
		Receipt:     fmt.Sprintf("test_receipt_%d", now.Unix()),
		Description: testOrderNote,
	}
}

// PaymentOrderRequest converts an amount in major units (e.g. "249.50"
// rupees) into an order request. Empty currency defaults to INR and an
// empty receipt to "order_<unix time>".
func PaymentOrderRequest(amount, currency, receipt string, now time.Time) (OrderRequest, error) {
	major, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(major) || math.IsInf(major, 0) {
		return OrderRequest{}, &ValidationError{Key: "amount", Message: fmt.Sprintf("%q is not a number", amount)}
	}
	minor := int64(math.Round(major * 100))
	if minor <= 0 {
		return OrderRequest{}, &ValidationError{Key: "amount", Message: "must be greater than zero"}
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if receipt == "" {
		receipt = fmt.Sprintf("order_%d", now.Unix())
	}
	return OrderRequest{
		Amount:      minor,
		Currency:    strings.ToUpper(currency),
		Receipt:     receipt,
		Description: paymentOrderNote,
	}, nil
}

type createResult struct {
	resp map[string]interface{}
	err  error
}

// CreateOrder submits req and returns the created order. The SDK call takes
// no context, so it runs in its own goroutine and CreateOrder returns as soon
// as ctx is done.
func CreateOrder(ctx context.Context, orders OrderCreator, req OrderRequest) (Order, error) {
	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes": map[string]interface{}{
			"description": req.Description,
		},
	}
	done := make(chan createResult, 1)
	go func() {
		resp, err := orders.Create(data, nil)
		done <- createResult{resp, err}
	}()

	var resp map[string]interface{}
	select {
	case <-ctx.Done():
		return Order{}, &ConnectivityError{Service: razorpayServiceName, Op: "create order", Err: ctx.Err()}
	case res := <-done:
		resp = res.resp
		if res.err != nil {
			return Order{}, &ConnectivityError{Service: razorpayServiceName, Op: "create order", Err: res.err}
		}
	}

	id, _ := resp["id"].(string)
	if id == "" {
		return Order{}, &ConnectivityError{
			Service: razorpayServiceName,
			Op:      "create order",
			Err:     fmt.Errorf("response has no order id: %v", resp),
		}
	}
	order := Order{ID: id, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}
	if v, ok := resp["amount"].(float64); ok {
		order.Amount = int64(v)
	}
	if v, ok := resp["currency"].(string); ok {
		order.Currency = v
	}
	if v, ok := resp["receipt"].(string); ok {
		order.Receipt = v
	}
	order.Status, _ = resp["status"].(string)
	return order, nil
}

// VerifyPayment checks the signature Razorpay Checkout returns for a
// completed payment against the key secret.
func VerifyPayment(cfg RazorpayConfig, orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, cfg.KeySecret)
}

package core_test

import (
	"context"
	"errors"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pizzashop/pizzasetup/cli/core"
)

// ────────────────────────────────────────────────────────────────────────────
// RunChecks (ginkgo; probes are stubbed)
// ────────────────────────────────────────────────────────────────────────────

func passing(detail string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return detail, nil }
}

func failing(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", err }
}

var _ = Describe("RunChecks", func() {
	var (
		ctx      context.Context
		reported []core.CheckResult
		report   func(core.CheckResult)
	)

	BeforeEach(func() {
		ctx = context.Background()
		reported = nil
		report = func(r core.CheckResult) { reported = append(reported, r) }
	})

	It("returns nil when every check passes", func() {
		err := core.RunChecks(ctx, []core.Check{
			{Name: "MongoDB ping", Run: passing("Connected to database: pizza_shop")},
			{Name: "SMTP login", Run: passing("ok")},
		}, time.Second, report)

		Expect(err).NotTo(HaveOccurred())
		Expect(reported).To(HaveLen(2))
		Expect(reported[0].OK()).To(BeTrue())
		Expect(reported[0].Detail).To(Equal("Connected to database: pizza_shop"))
	})

	It("keeps going after a connectivity failure", func() {
		down := &core.ConnectivityError{Service: "MongoDB", Op: "ping", Err: errors.New("connection refused")}
		err := core.RunChecks(ctx, []core.Check{
			{Name: "MongoDB ping", Run: failing(down)},
			{Name: "Razorpay test order", Run: passing("order_1")},
		}, time.Second, report)

		Expect(reported).To(HaveLen(2))
		Expect(reported[0].OK()).To(BeFalse())
		Expect(reported[1].OK()).To(BeTrue())
		Expect(err).To(MatchError(ContainSubstring("MongoDB ping")))
		Expect(core.IsConnectivity(err)).To(BeTrue())
	})

	It("keeps going after a validation failure and joins every failure", func() {
		bad := &core.ValidationError{Key: "SMTP_PORT", Message: "a value is required"}
		down := &core.ConnectivityError{Service: "Razorpay", Op: "create order", Err: errors.New("401")}
		err := core.RunChecks(ctx, []core.Check{
			{Name: "SMTP login", Run: failing(bad)},
			{Name: "Razorpay test order", Run: failing(down)},
		}, time.Second, report)

		Expect(reported).To(HaveLen(2))
		Expect(core.IsValidation(err)).To(BeTrue())
		Expect(core.IsConnectivity(err)).To(BeTrue())
	})

	It("stops on an unexpected error", func() {
		err := core.RunChecks(ctx, []core.Check{
			{Name: "first", Run: failing(io.ErrUnexpectedEOF)},
			{Name: "second", Run: passing("never")},
		}, time.Second, report)

		Expect(reported).To(HaveLen(1))
		Expect(err).To(MatchError(io.ErrUnexpectedEOF))
	})

	It("gives each check its own deadline", func() {
		var deadlines []time.Time
		probe := func(ctx context.Context) (string, error) {
			d, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			deadlines = append(deadlines, d)
			return "", nil
		}
		Expect(core.RunChecks(ctx, []core.Check{{Name: "a", Run: probe}, {Name: "b", Run: probe}}, time.Minute, nil)).To(Succeed())
		Expect(deadlines).To(HaveLen(2))
	})

	It("reports a timed-out probe as a failure", func() {
		slow := func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", &core.ConnectivityError{Service: "SMTP", Op: "login", Err: ctx.Err()}
		}
		err := core.RunChecks(ctx, []core.Check{{Name: "SMTP login", Run: slow}}, 10*time.Millisecond, report)

		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(reported).To(HaveLen(1))
	})

	It("runs nothing once the parent context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := core.RunChecks(cancelled, []core.Check{{Name: "a", Run: passing("x")}}, time.Second, report)

		Expect(reported).To(BeEmpty())
		Expect(err).To(MatchError(context.Canceled))
	})
})

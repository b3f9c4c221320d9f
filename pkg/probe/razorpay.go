package probe

const (
	KeyRazorpayKeyID     = "RAZORPAY_KEY_ID"
	KeyRazorpayKeySecret = "RAZORPAY_KEY_SECRET"

	RazorpayDashboardURL = "https://dashboard.razorpay.com/app/keys"
)

// RazorpayService is the payment gateway.
type RazorpayService struct{ BaseService }

var _ Service = (*RazorpayService)(nil)

func (r *RazorpayService) Name() string        { return "razorpay" }
func (r *RazorpayService) DisplayName() string { return "Razorpay" }

func (r *RazorpayService) Keys() []KeySpec {
	return []KeySpec{
		{Key: KeyRazorpayKeyID, Label: "Enter Razorpay Key ID"},
		{Key: KeyRazorpayKeySecret, Label: "Enter Razorpay Key Secret", Secret: true},
	}
}

func (r *RazorpayService) Help() []string {
	return []string{"Get your API keys from: " + RazorpayDashboardURL}
}

package probe

const (
	KeyFrontendURL = "FRONTEND_URL"

	DefaultFrontendURL = "http://localhost:3000"
)

// FrontendService is the web client. It is never probed; its URL ends up in
// verification and password-reset emails.
type FrontendService struct{ BaseService }

var _ Service = (*FrontendService)(nil)

func (f *FrontendService) Name() string        { return "frontend" }
func (f *FrontendService) DisplayName() string { return "Frontend" }

func (f *FrontendService) Keys() []KeySpec {
	return []KeySpec{
		{Key: KeyFrontendURL, Label: "Enter Frontend URL", Default: DefaultFrontendURL, Validate: ValidHTTPURL},
	}
}

package probe

// BaseService provides defaults shared by all services. Embed it and
// override any method that needs service-specific behavior.
type BaseService struct{}

func (b *BaseService) Help() []string { return nil }

func init() {
	// Setup order: database first, frontend URL last.
	Register(&MongoService{})
	Register(&JWTService{})
	Register(&SMTPService{})
	Register(&RazorpayService{})
	Register(&FrontendService{})
}

package probe

const (
	KeyMongoURI = "MONGODB_URI"

	DefaultMongoURI = "mongodb://localhost:27017/pizza_shop"
)

// MongoService is the order/menu database.
type MongoService struct{ BaseService }

var _ Service = (*MongoService)(nil)

func (m *MongoService) Name() string        { return "mongodb" }
func (m *MongoService) DisplayName() string { return "MongoDB" }

func (m *MongoService) Keys() []KeySpec {
	return []KeySpec{
		{Key: KeyMongoURI, Label: "Enter MongoDB URI", Default: DefaultMongoURI, Validate: ValidMongoURI},
	}
}

func (m *MongoService) Help() []string {
	return []string{
		"Please provide your MongoDB connection string.",
		"If you don't have one, press Enter to use the default local MongoDB.",
	}
}

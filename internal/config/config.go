package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Backend  Backend  `envPrefix:"BACKEND_"`
	Checkout Checkout `envPrefix:"CHECKOUT_"`

	LocalStorePath string `env:"LOCAL_STORE_PATH" envDefault:"storefront.db"`
}

type Backend struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://web-ecommerce-backend-jj6f.onrender.com"`
}

type Checkout struct {
	// Where the payment gateway sends the buyer back after authorization,
	// carrying the transaction reference as a query parameter.
	CallbackURL string `env:"CALLBACK_URL" envDefault:"https://zangglobal.com/checkout"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

package main

type Settings struct {
	Port        int    `env:"PORT,default=8000"`
	BasePath    string `env:"BASE_PATH,default=/flightdeck"`
	LogEncoding string `env:"LOG_ENCODING,default=console"`

	// Comma-separated origin allowlist for websocket upgrades; empty allows
	// every origin.
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	// Delivery policy per event category: "all-members" or
	// "members-except-sender".
	ChatDelivery     string `env:"CHAT_DELIVERY,default=all-members"`
	PositionDelivery string `env:"POSITION_DELIVERY,default=members-except-sender"`
}

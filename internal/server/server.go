package server

import (
	"countdowntimer/internal/client"
	"countdowntimer/internal/database"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	DB              database.Database
	Client          client.Client
	Redis           *redis.Client
	Logger          logger
	SessionTokenKey jwk.Key
	WebhookSecret   string
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

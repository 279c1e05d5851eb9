package internal

import "time"

// Config is the daemon environment. The initial owner identity and the
// board's custodial address are fixed at first boot; later runs reload the
// persisted owner and fee from the database.
type Config struct {
	Host           string        `env:"HOST,default=localhost"`
	Port           int           `env:"PORT,default=8080"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
	BoardAddress   string        `env:"BOARD_ADDRESS,required=true"`
	OwnerAddress   string        `env:"OWNER_ADDRESS,required=true"`
	InitialFee     *string       `env:"INITIAL_FEE"` // minor units, decimal; unset selects the default fee
	AuthSigningKey string        `env:"AUTH_SIGNING_KEY,required=true"`
	AuthTokenTTL   time.Duration `env:"AUTH_TOKEN_TTL,default=24h"`
}

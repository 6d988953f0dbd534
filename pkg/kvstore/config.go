package kvstore

import "time"

type Config struct {
	RedisURL       string        `env:"KV_REDIS_URL" envDefault:"redis://localhost:6379/0"` // RedisURL is the connection URL of the durable backend, e.g. "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"KV_RETRY_ATTEMPTS" envDefault:"3"`                   // RetryAttempts is the number of connection attempts before degrading to the in-process store.
	RetryInterval  time.Duration `env:"KV_RETRY_INTERVAL" envDefault:"2s"`                  // RetryInterval is the base delay between attempts; attempt n waits n times this value.
	ConnectTimeout time.Duration `env:"KV_CONNECT_TIMEOUT" envDefault:"30s"`                // ConnectTimeout bounds the whole connection phase.
	SweepInterval  time.Duration `env:"KV_SWEEP_INTERVAL" envDefault:"5m"`                  // SweepInterval is how often the in-process store purges expired entries.
}

package bfconfigs

import (
	"fmt"
	"time"

	"github.com/reusee/taibf/cmds"
	"github.com/reusee/taibf/configs"
	"github.com/reusee/taibf/modes"
	"github.com/reusee/taibf/vars"
)

// MaxSessions caps concurrently open sessions.
type MaxSessions int

var maxSessionsFlag = cmds.Var[int]("-max-sessions")

func (Module) MaxSessions(
	loader configs.Loader,
) MaxSessions {
	return MaxSessions(vars.FirstNonZero(
		*maxSessionsFlag,
		configs.First[int](loader, "max_sessions"),
		1024,
	))
}

// MaxConns caps concurrently served connections.
type MaxConns int

var maxConnsFlag = cmds.Var[int]("-max-conns")

func (Module) MaxConns(
	loader configs.Loader,
) MaxConns {
	return MaxConns(vars.FirstNonZero(
		*maxConnsFlag,
		configs.First[int](loader, "max_conns"),
		64,
	))
}

// CloseTimeout bounds how long closing a session waits for its interpreter.
// Zero waits forever.
type CloseTimeout time.Duration

var closeTimeoutFlag = cmds.Var[time.Duration]("-close-timeout")

func (Module) CloseTimeout(
	loader configs.Loader,
	mode modes.Mode,
) CloseTimeout {
	if *closeTimeoutFlag != 0 {
		return CloseTimeout(*closeTimeoutFlag)
	}
	if str := configs.First[string](loader, "close_timeout"); str != "" {
		d, err := time.ParseDuration(str)
		if err != nil {
			panic(fmt.Errorf("close_timeout: %w", err))
		}
		return CloseTimeout(d)
	}
	if mode == modes.ModeDevelopment {
		return CloseTimeout(time.Second)
	}
	return CloseTimeout(5 * time.Second)
}

// RateLimit bounds requests per connection. A zero RPS disables limiting.
type RateLimit struct {
	RPS   float64
	Burst int
}

var (
	rateLimitRPSFlag   = cmds.Var[float64]("-rate-limit")
	rateLimitBurstFlag = cmds.Var[int]("-rate-burst")
)

func (Module) RateLimit(
	loader configs.Loader,
) RateLimit {
	rps := vars.FirstNonZero(
		*rateLimitRPSFlag,
		configs.First[float64](loader, "rate_limit_rps"),
	)
	burst := vars.FirstNonZero(
		*rateLimitBurstFlag,
		configs.First[int](loader, "rate_limit_burst"),
	)
	if rps > 0 && burst <= 0 {
		burst = max(1, int(rps*2))
	}
	return RateLimit{
		RPS:   rps,
		Burst: burst,
	}
}

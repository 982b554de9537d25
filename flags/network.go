package flags

import (
	"time"

	"gopkg.in/urfave/cli.v1"
)

// RouterFlags covers router admission and relay transport.
func RouterFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "routers",
			Usage: "Comma-separated admitted routers, first router carries full messages",
		},
		cli.DurationFlag{
			Name:  "router.timeout",
			Usage: "Timeout of a relay request to a router endpoint",
			Value: 10 * time.Second,
		},
		cli.IntFlag{
			Name:  "maxmsgsize",
			Usage: "Maximum size in bytes of a message received from a router",
			Value: 64 * 1024,
		},
	}
}

// QueueFlags isolates message-queue tuning knobs.
func QueueFlags() []cli.Flag {
	return []cli.Flag{
		cli.DurationFlag{
			Name:  "queue.interval",
			Usage: "Interval between queue service rounds",
			Value: time.Second,
		},
		cli.IntFlag{
			Name:  "queue.batch",
			Usage: "Maximum messages processed per service round",
			Value: 64,
		},
	}
}

package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags holds knobs specific to the local gateway instance.
func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Custom node name used in logs",
		},
		cli.StringFlag{
			Name:  "sender",
			Usage: "Local account outbound messages are sent from (local/<32 bytes hex>)",
		},
		cli.StringFlag{
			Name:  "store.backend",
			Usage: "Database backend (leveldb|memory)",
			Value: "leveldb",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to the database cache",
			Value: 64,
		},
		cli.IntFlag{
			Name:  "store.handles",
			Usage: "Number of open files the database may use",
			Value: 128,
		},
	}
}

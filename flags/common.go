package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the base set of CLI flags shared across commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "TOML configuration file",
		},
		cli.StringFlag{
			Name:  "datadir",
			Usage: "Data directory for the gateway databases",
			Value: "~/.lpgateway",
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "Storage and queue preset (lite|full|default)",
		},
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (0=fatal,1=error,2=warn,3=info,4=debug,5=trace)",
			Value: 3,
		},
		cli.BoolFlag{
			Name:  "log.color",
			Usage: "Enable colored log output",
		},
		cli.StringFlag{
			Name:  "log.sentry",
			Usage: "Sentry DSN errors are reported to",
		},
		cli.BoolFlag{
			Name:  "http",
			Usage: "Enable the HTTP API",
		},
		cli.StringFlag{
			Name:  "http.addr",
			Usage: "HTTP API listening interface",
			Value: "127.0.0.1",
		},
		cli.IntFlag{
			Name:  "http.port",
			Usage: "HTTP API listening port",
			Value: 18600,
		},
		cli.StringFlag{
			Name:   "http.admintoken",
			Usage:  "Bearer token required by state changing HTTP API endpoints",
			EnvVar: "LPGATEWAY_ADMIN_TOKEN",
		},
		cli.BoolFlag{
			Name:  "metrics",
			Usage: "Expose Prometheus metrics under /metrics of the HTTP API",
		},
	}
}

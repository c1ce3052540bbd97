package config

import "flag"

// ParseFlags builds the configuration from defaults, an optional YAML file,
// the environment and command-line flags, in increasing precedence.
func ParseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("flowmon", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "Path to YAML config file")
		apiURL     = fs.String("api", "", "Backend API base URL")
		timeout    = fs.Duration("timeout", 0, "Per-request timeout")
		flowTO     = fs.Duration("flow-timeout", 0, "Timeout for the flow records request")
		flowLimit  = fs.Int("flow-limit", 0, "Flow records requested per refresh")
		pageSize   = fs.Int("page-size", 0, "Flows per page")
		interval   = fs.Duration("interval", 0, "Auto-refresh interval")
		tick       = fs.Duration("tick", 0, "Scheduler tick resolution")
		port       = fs.Int("port", 0, "Web server port")
		reportDir  = fs.String("reports", "", "Report output directory")
		logLevel   = fs.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *configPath != "" {
		if err := LoadFile(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.APIURL = getEnv(cfg.APIURL, "FLOWMON_API_URL", "API_URL")

	// Only flags given on the command line override the layers below.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.APIURL = *apiURL
		case "timeout":
			cfg.Timeout = *timeout
		case "flow-timeout":
			cfg.FlowTimeout = *flowTO
		case "flow-limit":
			cfg.FlowLimit = *flowLimit
		case "page-size":
			cfg.PageSize = *pageSize
		case "interval":
			cfg.RefreshInterval = *interval
		case "tick":
			cfg.TickResolution = *tick
		case "port":
			cfg.Port = *port
		case "reports":
			cfg.ReportDir = *reportDir
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	return cfg, nil
}


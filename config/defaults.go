package config

// SetDefaults fills every zero host field. Battle fields are left alone:
// the engine applies its own defaults to zero values.
func SetDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.TickRate == 0 {
		cfg.Server.TickRate = 60
	}
	if cfg.Server.MaxDelta == 0 {
		cfg.Server.MaxDelta = 0.1
	}
	if cfg.Server.FireRateLimit == 0 {
		cfg.Server.FireRateLimit = 5
	}
	if cfg.Server.FireBurst == 0 {
		cfg.Server.FireBurst = 3
	}
	if cfg.Server.SendBuffer == 0 {
		cfg.Server.SendBuffer = 64
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Simulate.Ticks == 0 {
		cfg.Simulate.Ticks = 3600
	}
	if cfg.Simulate.Delta == 0 {
		cfg.Simulate.Delta = 1.0 / 60
	}
	if cfg.Simulate.Runs == 0 {
		cfg.Simulate.Runs = 1
	}
}

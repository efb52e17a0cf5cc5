// Package config provides 12-factor configuration management for the bridge service.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Engine: JavaScript engine settings (timeout, stack size, pool, strict mode)
//   - Logging: Log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Listening on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - EVAL_TIMEOUT, MAX_CALL_STACK, POOL_SIZE, USE_STRICT
//   - LOG_LEVEL, LOG_DEV
package config

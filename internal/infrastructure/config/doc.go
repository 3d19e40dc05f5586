// Package config handles loading and validating the warehouse coordinator
// configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with ALMACEN_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (operator password, JWT secret, broker credentials)
//     should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Warehouse.AutomatedSite)
package config

// Package config provides centralized configuration management for BikePulse.
// It loads configuration from several sources, validates it, and resolves every
// file system path against a single base directory.
//
// # Configuration Sources
//
// Sources are applied in order, later ones overriding earlier ones:
//
//	1. Default values
//	2. A YAML file (BIKE_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. A .env file in the working directory
//	4. Process environment variables
//
// # Environment Variables
//
// Environment variables use the BIKE_ prefix and follow the section layout:
//
//	BIKE_SERVER_PORT=8080
//	BIKE_DATASET_FILE=data/day.csv
//	BIKE_DASHBOARD_DEFAULT_K=3
//	BIKE_LOGGING_LEVEL=debug
//	BIKE_EXPORT_FORMATS=csv,xlsx
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths := cfg.GetPaths()
//	if err := paths.EnsureDirectories(); err != nil {
//	    log.Fatal(err)
//	}
package config

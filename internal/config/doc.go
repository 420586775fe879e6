// Package config provides configuration structures and utilities for SightScan.
// It defines the crawl settings, renderer options, and output destinations,
// and loads them from the .sightscan YAML file.
package config

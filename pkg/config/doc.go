// Package config provides type-safe environment variable loading with
// per-type caching using Go generics.
//
// A .env file is loaded automatically on first use; parsing into struct
// fields is done by the caarlos0/env library. Each configuration type is
// parsed once per process and cached, making loaded config immutable:
//
//	var smtp smtpcfg.Config
//	config.MustLoad(&smtp) // parses environment
//
//	var again smtpcfg.Config
//	config.MustLoad(&again) // cached, again == smtp
//
// StripQuotes is a companion helper for env values that arrive wrapped in
// defensive quotes.
package config

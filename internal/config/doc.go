// Package config provides the configuration system for imagenode.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← IMAGENODE_ prefix, highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML, by extension
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: Configuration file loading (TOML, YAML, environment variables)
//   - watcher: File watching for live reload
//
// # Basic Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	delay := cfg.Element.SettleDelay
//
// # Configuration Files
//
//	# ~/.config/imagenode/config.toml
//	[element]
//	settleDelay = "200ms"
//	commandPriority = "low"
//
//	[loadgate]
//	cacheCapacity = 0
//	fetchTimeout = "30s"
//
//	[renderer]
//	cellWidth = 8
//	cellHeight = 16
//	focusColor = "#3d8bfd"
//
//	[logging]
//	level = "info"
//	format = "console"
//
// # Live Reload
//
// A Manager watches the file and reloads it on change. A file that fails to
// load or validate is logged and the previous configuration stays active.
package config

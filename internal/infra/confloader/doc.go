// Package confloader provides configuration loading mechanism.
//
// Loader wraps koanf. Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (KVDIS_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct (defaults)
//
// Watcher wraps fsnotify and reports debounced changes of configuration
// files so that hot-reloadable settings (the log level) can be reapplied.
package confloader

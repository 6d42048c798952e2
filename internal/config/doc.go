// Package config loads the configuration of the edf-browser terminal client.
//
// Values come from config.yaml in ~/.config/edf-browser or the working
// directory, overridden by EDF_* environment variables:
//
//	backend_url: http://localhost:8080   # EDF_BACKEND_URL
//	api:
//	  path: /api/edfs                    # EDF_API_PATH
//	  delay: 1.2s                        # EDF_API_DELAY
//	  timeout: 60s                       # EDF_API_TIMEOUT
//	ui:
//	  sorted: false                      # EDF_UI_SORTED
//	cache:
//	  enabled: true                      # EDF_CACHE_ENABLED
//	  dir: ~/.local/share/edf-browser/cache
//	logging:
//	  file: ~/.local/share/edf-browser/edf-browser.log
//	  level: info                        # EDF_LOGGING_LEVEL
package config

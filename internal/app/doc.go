// Package app is the composition root for vsmbar.
//
// Run loads configuration and preferences, opens the log file, builds one
// search client per backend and hands everything to the overlay:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()         Read ~/.config/vsmbar/config.toml
//	       ├─────> logging.Open()        Daily log file under log_dir
//	       ├─────> prefs.Load()          Theme and last backend
//	       ├─────> vsm.NewClient() x2    Local and hosted searchers
//	       ├─────> controller.New()      Session state owner
//	       ├─────> history.Open()        Recent corpora and queries
//	       ├─────> corpus.NewWatcher()   Stale index notice
//	       ├─────> hotkey.Bind()         Global ctrl+space
//	       └─────> ui.Run()              Bubble Tea program (blocks)
//
// Only a bad config file or an invalid backend URL is fatal. A missing log
// directory, history database, watcher or global hotkey is logged and the
// overlay starts without it.
//
// Startup backend precedence is the -backend flag, then the last backend
// saved in prefs, then the config file.
package app

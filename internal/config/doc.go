// Package config loads the static terminal configuration.
//
// The configuration names the framing wrapped around every outgoing command,
// the command sent at session start, the static palette entries, the macro
// table and the optional broker bridge:
//
//	{
//	  "prefix": "AT+",
//	  "sufix": "\r\n",
//	  "init": "RESET",
//	  "commands": ["PING", "STATUS"],
//	  "macro": {"led_on": {"commands": ["GPIO1=1"], "code": "./react.sh"}},
//	  "remote": {"broker": "10.0.0.2", "publish": "dev/tx", "subscribe": "dev/rx"}
//	}
//
// JSON files may carry comments and trailing commas. Files ending in .yaml or
// .yml are read as YAML with the same keys. A configuration is validated as a
// whole and every problem is reported in one ValidationError.
//
// # File Location
//
// Resolve looks for the file as given and then inside the configuration
// directory:
//   - Linux: $XDG_CONFIG_HOME/devterm or $HOME/.config/devterm
//   - macOS: $HOME/.config/devterm
//   - Windows: %LOCALAPPDATA%\devterm
package config

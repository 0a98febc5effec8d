package constants

const (
	// Env variable names

	ENV_CONFIG    = "NAIMETA_CONFIG"
	ENV_LIBRARY   = "NAIMETA_LIBRARY"
	ENV_WORKERS   = "NAIMETA_WORKERS"
	ENV_LOCALE    = "NAIMETA_LOCALE"
	ENV_LOG_LEVEL = "NAIMETA_LOG_LEVEL"

	APP_NAME = "naimeta"

	CONFIG_FILENAME  = "config.toml"
	LIBRARY_FILENAME = "library.db"

	// UTC timestamps in JSON documents
	TIME_FORMAT = "2006-01-02T15:04:05.000Z"

	DATE_FORMAT = "2006-01-02"

	MIME_JPEG = "image/jpeg"
)

const HELP_TEMPLATE_FLAG = `The Go text template string. If the value starts with "@", ` +
	`it (the rest part after @) is treated as a filename, ` +
	`which contents will be used as template. ` +
	`All sprout functions are supported, see https://github.com/go-sprout/sprout . ` +
	`A special "eval" function evaluates JavaScript code, where the template data is available as "global"`

const HELP_FORMAT_FLAG = `Output format: "json", "yaml", "toml" or "xml"`

const HELP_OUTPUT_FLAG = `Output file path. Use "-" for stdout`

const HELP_FORCE_FLAG = "Force overwriting without confirmation"

const HELP_DATE_FLAG = `Date in "` + DATE_FORMAT + `" format (local time)`

package env

const (
	// EXPRESS UNCHAINED

	EnvConfigPath    = "UNCHAINED_CONFIG_PATH"
	EnvBasePath      = "UNCHAINED_BASE_PATH"
	EnvDefaultMethod = "UNCHAINED_DEFAULT_METHOD"
	EnvTemplateDir   = "UNCHAINED_TEMPLATE_DIR"
	EnvLogLevel      = "UNCHAINED_LOG_LEVEL"

	// ENVIRONMENT

	EnvGoEnvironment = "GO_ENV"
	EnvPort          = "PORT"
)

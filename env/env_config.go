package env

const (
	// REDIS

	EnvRedisURL = "REDIS_URL"

	// EMAIL / SMTP

	EnvResendApiKey = "RESEND_API_KEY"

	EnvSMTPHost  = "SMTP_HOST"
	EnvSMTPPort  = "SMTP_PORT"
	EnvSMTPUser  = "SMTP_USER"
	EnvSMTPPass  = "SMTP_PASS"
	EnvEmailFrom = "FROM_ADDRESS"

	// ADMIN NOTIFICATIONS

	EnvAdminEmail = "ADMIN_EMAIL"
	EnvDevEmails  = "DEV_EMAILS"

	// AUTH

	EnvSessionSecret = "SESSION_SECRET"

	// SEED ADMIN (initial staff account on an empty store)

	EnvSeedAdminEmail    = "SEED_ADMIN_EMAIL"
	EnvSeedAdminPassword = "SEED_ADMIN_PASSWORD"
	EnvSeedAdminName     = "SEED_ADMIN_NAME"

	// SERVICE

	EnvConfigPath    = "CONFIG_PATH"
	EnvGoEnvironment = "GO_ENV"
	EnvPort          = "PORT"
	EnvLogLevel      = "LOG_LEVEL"
)

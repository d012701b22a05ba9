package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "FRUITSTAND"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FRUITSTAND_DB_DSN"
	EnvDBHost = "FRUITSTAND_DB_HOST"
	EnvDBUser = "FRUITSTAND_DB_USER"
	EnvDBName = "FRUITSTAND_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

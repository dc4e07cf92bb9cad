package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "APPROVALFLOW"
const CONFIG_FILE_ENV = "APPROVALFLOW_CONFIG_FILE"

const DATABASE_TYPE = "database.type"
const DATABASE_URL = "database.url"
const DATABASE_SQLLITE_FILE_NAME = "database.sqllite_file_name"
const DATABASE_MAX_OPEN_CONNS = "database.max_open_conns"
const DATABASE_MAX_IDLE_CONNS = "database.max_idle_conns"
const DATABASE_CONN_MAX_LIFETIME = "database.conn_max_lifetime"

const SERVER_WEB_PORT = "server.web_port"
const SERVER_REQUEST_TIMEOUT = "server.request_timeout"   //upper bound on every interactive call
const SERVER_SHUTDOWN_TIMEOUT = "server.shutdown_timeout" //grace period for in-flight requests

const ENGINE_STRICT_TRANSITIONS = "engine.strict_transitions" //reject transitions that are not edges of the status graph

const SWEEP_ENABLED = "sweep.enabled"
const SWEEP_SCHEDULE = "sweep.schedule"       //cron expression, standard 5 field format
const SWEEP_STALE_AFTER = "sweep.stale_after" //how long a workflow has to sit in APPROVED before it is completed

const AUDIT_BUFFER_SIZE = "audit.buffer_size"

const AUTH_JWT_SECRET = "auth.jwt_secret"
const AUTH_TOKEN_TTL = "auth.token_ttl"
const AUTH_ADMIN_PASSWORD = "auth.admin_password"
const AUTH_SEED_DEMO_USERS = "auth.seed_demo_users"

const LOG_LEVEL = "log.level"

const DATABASE_TYPE_POSTGRES = "POSTGRES"
const DATABASE_TYPE_MYSQL = "MYSQL"
const DATABASE_TYPE_SQLLITE = "SQLLITE"

var (
	mu       sync.RWMutex
	settings = newSettings()
)

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(DATABASE_SQLLITE_FILE_NAME, "./approvalflow.db")
	v.SetDefault(DATABASE_MAX_OPEN_CONNS, 25)
	v.SetDefault(DATABASE_MAX_IDLE_CONNS, 5)
	v.SetDefault(DATABASE_CONN_MAX_LIFETIME, 5*time.Minute)

	v.SetDefault(SERVER_WEB_PORT, "8080")
	v.SetDefault(SERVER_REQUEST_TIMEOUT, 10*time.Second)
	v.SetDefault(SERVER_SHUTDOWN_TIMEOUT, 15*time.Second)

	v.SetDefault(ENGINE_STRICT_TRANSITIONS, true)

	v.SetDefault(SWEEP_ENABLED, true)
	v.SetDefault(SWEEP_SCHEDULE, "0 0 * * *")
	v.SetDefault(SWEEP_STALE_AFTER, 24*time.Hour)

	v.SetDefault(AUDIT_BUFFER_SIZE, 256)

	v.SetDefault(AUTH_TOKEN_TTL, 8*time.Hour)
	v.SetDefault(AUTH_SEED_DEMO_USERS, false)

	v.SetDefault(LOG_LEVEL, "info")
}

// Load reads an optional YAML file on top of the defaults and environment.
// An empty path falls back to APPROVALFLOW_CONFIG_FILE; when neither is set only
// defaults and environment variables apply.
func Load(path string) error {
	if path == "" {
		path = os.Getenv(CONFIG_FILE_ENV)
	}
	if path == "" {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	settings.SetConfigFile(path)
	settings.SetConfigType("yaml")
	if err := settings.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings the process cannot start without.
func Validate() error {
	switch GetSystemSettingString(DATABASE_TYPE) {
	case DATABASE_TYPE_POSTGRES, DATABASE_TYPE_MYSQL:
		if GetSystemSettingString(DATABASE_URL) == "" {
			return fmt.Errorf("%s_DATABASE_URL must be set for database type %s", ENV_PREFIX, GetSystemSettingString(DATABASE_TYPE))
		}
	case DATABASE_TYPE_SQLLITE:
	default:
		return fmt.Errorf("%s_DATABASE_TYPE must be set to one of the following values: POSTGRES, MYSQL, SQLLITE", ENV_PREFIX)
	}
	if GetSystemSettingDuration(SWEEP_STALE_AFTER) <= 0 {
		return fmt.Errorf("%s must be a positive duration", SWEEP_STALE_AFTER)
	}
	if GetSystemSettingDuration(SERVER_REQUEST_TIMEOUT) <= 0 {
		return fmt.Errorf("%s must be a positive duration", SERVER_REQUEST_TIMEOUT)
	}
	return nil
}

// Set overrides a setting for the lifetime of the process, mostly used by tests.
func Set(settingKey string, value any) {
	mu.Lock()
	defer mu.Unlock()
	settings.Set(settingKey, value)
}

// Reset drops every override and file value, keeping defaults and environment.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	settings = newSettings()
}

func GetSystemSettingString(settingKey string) string {
	mu.RLock()
	defer mu.RUnlock()
	return settings.GetString(settingKey)
}

func GetSystemSettingInteger(settingKey string) int {
	mu.RLock()
	defer mu.RUnlock()
	return settings.GetInt(settingKey)
}

func GetSystemSettingBool(settingKey string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return settings.GetBool(settingKey)
}

// GetSystemSettingDuration accepts both Go duration strings ("36h") and values set as time.Duration.
func GetSystemSettingDuration(settingKey string) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return settings.GetDuration(settingKey)
}

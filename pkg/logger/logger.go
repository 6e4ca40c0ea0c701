package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init builds the global logger. Production gets JSON at info level,
// everything else the console encoder at debug level.
func Init(env string) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewExample()
	}

	mu.Lock()
	sugar = z.Sugar()
	mu.Unlock()
}

func Sync() {
	_ = current().Sync()
}

func Debug(msg string, keysAndValues ...interface{}) {
	current().Debugw(msg, normalize(keysAndValues)...)
}

func Info(msg string, keysAndValues ...interface{}) {
	current().Infow(msg, normalize(keysAndValues)...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	current().Warnw(msg, normalize(keysAndValues)...)
}

func Error(msg string, keysAndValues ...interface{}) {
	current().Errorw(msg, normalize(keysAndValues)...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	current().Fatalw(msg, normalize(keysAndValues)...)
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// normalize turns the loose call style used across services
// (logger.Error("msg", err)) into proper key/value pairs and
// redacts values under secret-looking keys.
func normalize(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}

	out := make([]interface{}, 0, len(kv)+1)
	i := 0
	for ; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			// not a key/value list, log everything under "extra"
			return []interface{}{"extra", kv}
		}
		out = append(out, key, redact(key, kv[i+1]))
	}
	if i < len(kv) {
		if err, ok := kv[i].(error); ok {
			out = append(out, "error", err)
		} else {
			out = append(out, "extra", kv[i])
		}
	}

	return out
}

func redact(key string, val interface{}) interface{} {
	k := strings.ToLower(key)
	for _, s := range []string{"password", "token", "secret", "authorization", "api_key"} {
		if strings.Contains(k, s) {
			return "[REDACTED]"
		}
	}
	if err, ok := val.(error); ok && err != nil {
		return err.Error()
	}
	if b, ok := val.([]byte); ok {
		return fmt.Sprintf("%s", b)
	}
	return val
}

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig controls where run logs go.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
	// Dir is the root log directory. Empty disables the log file.
	Dir string `mapstructure:"dir"`
	// JSON switches the console output from the human format to JSON.
	JSON bool `mapstructure:"json"`
}

// RunLogger writes to stdout and to a per-command log file.
type RunLogger struct {
	*zap.Logger
	file *os.File
	path string
}

func NewRunLogger(command string, cfg LoggerConfig) (*RunLogger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zapcore.InfoLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleCfg)
	if cfg.JSON {
		consoleEncoder = zapcore.NewJSONEncoder(jsonEncoderConfig())
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level),
	}

	rl := &RunLogger{}
	if cfg.Dir != "" {
		// Sanitize command name for file system
		name := strings.ReplaceAll(strings.ToLower(command), " ", "_")

		dir := filepath.Join(cfg.Dir, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		rl.path = filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, timestamp))

		file, err := os.Create(rl.path)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		rl.file = file
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(file), level))
	}

	rl.Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).With(zap.String("command", command))
	return rl, nil
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

// Path is the log file path, empty when file logging is off.
func (rl *RunLogger) Path() string {
	return rl.path
}

func (rl *RunLogger) Close() error {
	_ = rl.Logger.Sync()
	if rl.file == nil {
		return nil
	}
	return rl.file.Close()
}

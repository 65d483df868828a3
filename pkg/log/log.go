package log

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogMaxSize = 100 // MB

// FileConfig enables rotated file output when Path is set.
type FileConfig struct {
	Path       string `mapstructure:"path" json:"path"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
	MaxDays    int    `mapstructure:"max_days" json:"max_days"`
}

// Config describes the process logger.
type Config struct {
	Level  string     `mapstructure:"level" json:"level"`
	Format string     `mapstructure:"format" json:"format"` // json or console
	Stdout bool       `mapstructure:"stdout" json:"stdout"`
	File   FileConfig `mapstructure:"file" json:"file"`
}

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// L returns the global logger. It is a no-op logger until ReplaceGlobals.
func L() *zap.Logger {
	return global.Load()
}

// ReplaceGlobals installs lg as the global logger and returns a function
// restoring the previous one.
func ReplaceGlobals(lg *zap.Logger) func() {
	prev := global.Swap(lg)
	return func() { global.Store(prev) }
}

// New builds a logger from cfg. The returned closer flushes and releases
// the file sink, if any.
func New(cfg *Config) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parse log level %q", cfg.Level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, nil, errors.Newf("unknown log format %q", cfg.Format)
	}

	var (
		sinks  []zapcore.WriteSyncer
		closer = func() error { return nil }
	)
	if cfg.Stdout {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}
	if cfg.File.Path != "" {
		lj, err := initFileLog(&cfg.File)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, zapcore.AddSync(lj))
		closer = lj.Close
	}
	if len(sinks) == 0 {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	lg := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return lg, func() error {
		_ = lg.Sync()
		return closer()
	}, nil
}

// initFileLog rotates the log file with lumberjack.
func initFileLog(cfg *FileConfig) (*lumberjack.Logger, error) {
	if st, err := os.Stat(cfg.Path); err == nil && st.IsDir() {
		return nil, errors.Newf("can't use directory %s as log file", cfg.Path)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}
	maxSize := cfg.MaxSize
	if maxSize == 0 {
		maxSize = defaultLogMaxSize
	}

	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	}, nil
}

package logging

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel переводит строку конфигурации в уровень; неизвестное значение: INFO
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Options задаёт параметры логгера компонента
type Options struct {
	Dir             string    // каталог для файлов логов; пусто: без файла
	Console         io.Writer // nil: os.Stdout
	MinConsoleLevel LogLevel
	MinFileLevel    LogLevel
}

// DefaultOptions: консоль от INFO, файл в logs/ от TRACE
func DefaultOptions() Options {
	return Options{
		Dir:             "logs",
		MinConsoleLevel: INFO,
		MinFileLevel:    TRACE,
	}
}

// Logger пишет сообщения компонента в консоль и (опционально) в файл
type Logger struct {
	mu              sync.Mutex
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
}

// NewLogger создаёт логгер компонента с настройками по умолчанию
func NewLogger(component string) (*Logger, error) {
	return NewLoggerWithOptions(component, DefaultOptions())
}

// NewLoggerWithOptions создаёт логгер компонента
func NewLoggerWithOptions(component string, opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	l := &Logger{
		component:       component,
		consoleLogger:   log.New(console, "", log.LstdFlags),
		minConsoleLevel: opts.MinConsoleLevel,
		minFileLevel:    opts.MinFileLevel,
	}

	if opts.Dir == "" {
		return l, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", opts.Dir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l.file = file
	l.fileLogger = log.New(file, "", log.LstdFlags)
	return l, nil
}

// Close закрывает файл логов, если он открыт
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// SetLevels меняет пороги вывода
func (l *Logger) SetLevels(console, file LogLevel) {
	l.mu.Lock()
	l.minConsoleLevel = console
	l.minFileLevel = file
	l.mu.Unlock()
}

func (l *Logger) Trace(format string, args ...interface{}) { l.log(TRACE, format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if level >= l.minConsoleLevel {
		l.consoleLogger.Println(message)
	}
}

// Глобальный логгер по умолчанию: до InitDefaultLogger пишет только в консоль
var (
	defaultMu     sync.RWMutex
	defaultLogger = &Logger{
		component:       "main",
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: INFO,
		minFileLevel:    ERROR,
	}
)

// InitDefaultLogger заменяет глобальный логгер логгером компонента с файлом в logs/
func InitDefaultLogger(component string) error {
	return InitDefaultLoggerWithOptions(component, DefaultOptions())
}

// InitDefaultLoggerWithOptions заменяет глобальный логгер
func InitDefaultLoggerWithOptions(component string, opts Options) error {
	logger, err := NewLoggerWithOptions(component, opts)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	return nil
}

// CloseDefaultLogger закрывает файл глобального логгера
func CloseDefaultLogger() {
	current().Close()
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func Trace(format string, args ...interface{}) { current().Trace(format, args...) }
func Debug(format string, args ...interface{}) { current().Debug(format, args...) }
func Info(format string, args ...interface{})  { current().Info(format, args...) }
func Warn(format string, args ...interface{})  { current().Warn(format, args...) }
func Error(format string, args ...interface{}) { current().Error(format, args...) }

// LogPayload логирует бинарную полезную нагрузку события с hex дампом
func LogPayload(source string, eventType string, payload []byte) {
	Trace("=== PAYLOAD %s %s (%d bytes) ===", source, eventType, len(payload))
	if len(payload) > 0 {
		Trace("%s", HexDump(payload))
	}
}

// HexDump создает hex дамп данных
func HexDump(data []byte) string {
	if len(data) == 0 {
		return "No data"
	}

	// Ограничиваем размер дампа до 256 байт
	size := len(data)
	if size > 256 {
		size = 256
	}

	return hex.Dump(data[:size])
}

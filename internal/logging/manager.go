package logging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Имена компонентов
const (
	ComponentGame     = "game"
	ComponentStorage  = "storage"
	ComponentEventBus = "eventbus"
)

// LoggerManager выдаёт по одному логгеру на компонент
type LoggerManager struct {
	mu      sync.Mutex
	opts    Options
	loggers map[string]*Logger
}

var (
	managerOnce   sync.Once
	globalManager *LoggerManager
)

// GetLoggerManager возвращает глобальный менеджер.
// Пока не вызван Configure, логгеры пишут только в консоль.
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager(Options{MinConsoleLevel: INFO, MinFileLevel: TRACE})
	})
	return globalManager
}

// NewLoggerManager создаёт менеджер с опциями opts для новых логгеров
func NewLoggerManager(opts Options) *LoggerManager {
	return &LoggerManager{opts: opts, loggers: make(map[string]*Logger)}
}

// Configure задаёт опции новых логгеров и переносит уровни на уже созданные.
// Каталог и консоль существующих логгеров не меняются.
func (lm *LoggerManager) Configure(opts Options) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.opts = opts
	for _, logger := range lm.loggers {
		logger.SetLevels(opts.MinConsoleLevel, opts.MinFileLevel)
	}
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}
	logger, err := NewLoggerWithOptions(component, lm.opts)
	if err != nil {
		return nil, fmt.Errorf("logger %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger как GetLogger, но при ошибке (например, нет прав на каталог)
// возвращает консольный логгер
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	if logger, err := lm.GetLogger(component); err == nil {
		return logger
	}

	lm.mu.Lock()
	opts := lm.opts
	lm.mu.Unlock()
	opts.Dir = ""

	fallback, _ := NewLoggerWithOptions(component, opts)
	return fallback
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	loggers := lm.loggers
	lm.loggers = make(map[string]*Logger)
	lm.mu.Unlock()

	var errs []error
	for component, logger := range loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", component, err))
		}
	}
	return errors.Join(errs...)
}

// ListComponents возвращает имена компонентов по алфавиту
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel меняет уровни логгера компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	logger, ok := lm.loggers[component]
	lm.mu.Unlock()

	if !ok {
		return fmt.Errorf("logger %s not found", component)
	}
	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}

// GetComponentLogger возвращает логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetGameLogger() *Logger     { return GetComponentLogger(ComponentGame) }
func GetStorageLogger() *Logger  { return GetComponentLogger(ComponentStorage) }
func GetEventBusLogger() *Logger { return GetComponentLogger(ComponentEventBus) }

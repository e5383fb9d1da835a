// internal/utils/logger/config.go
package logger

import (
	"io"
	"os"
)

type Config struct {
	LogFile     string // пустая строка отключает файловый вывод
	MaxSize     int    // мегабайты
	MaxAge      int    // дни
	MaxBackups  int    // количество файлов
	Compress    bool   // сжимать ротированные файлы
	Development bool

	// Console получает человекочитаемый вывод. Отчёт печатается в stdout,
	// поэтому по умолчанию логи идут в stderr.
	Console io.Writer
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "price-report.log",
		MaxSize:     100,  // 100 MB
		MaxAge:      7,    // 7 дней
		MaxBackups:  3,    // 3 файла
		Compress:    true, // сжимать старые логи
		Development: false,
		Console:     os.Stderr,
	}
}

// Package telemetry содержит настройку structured logging (slog)
// и Prometheus-метрики диспетчеризации шагов.
//
// Логирование настраивается переменными окружения LOG_LEVEL и LOG_FORMAT.
// Метрики собираются в собственный Registry: долгоживущий scheduler
// отдаёт их через /metrics, одноразовый CLI-запуск пушит в Pushgateway.
package telemetry

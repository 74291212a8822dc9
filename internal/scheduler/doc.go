// Package scheduler запускает pipeline по расписанию.
//
// Schedule задаётся cron-выражением (минуты часы дни месяцы дни_недели)
// или интервалом в секундах. Scheduler вычисляет next_due_at, спит до
// него и запускает pipeline; тик, пришедший пока предыдущий запуск ещё
// выполняется, пропускается.
//
// Структура:
//   - scheduler.go — цикл Run и обработка тиков
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
package scheduler

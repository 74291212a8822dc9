// Package events публикует события жизненного цикла pipeline в RabbitMQ.
//
// События (pipeline.started, step.finished, pipeline.finished) —
// для внешних наблюдателей: дашбордов, алертинга, downstream-автоматизации.
// Сам драйвер ничего из очередей не читает.
//
// Публикация опциональна: без RABBITMQ_URL драйвер работает без событий.
package events

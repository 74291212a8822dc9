// Package cli содержит команды инструмента командной строки mlpipe:
// запуск pipeline, просмотр каталога шагов, работа с конфигурацией
// и историей выполнений.
package cli

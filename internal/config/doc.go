// Package config загружает конфигурацию pipeline из YAML-файла
// и применяет overrides вида "etl.min_price=50" поверх неё.
//
// Конфигурация описывает проект целиком: имя проекта и эксперимента
// на tracking-платформе, components repository, параметры ETL,
// проверки данных и обучения модели.
package config

// Package pipeline содержит каталог шагов ML-pipeline и драйвер,
// который последовательно диспетчеризует их как tracked runs на
// внешней tracking-платформе.
//
// Каталог фиксирован: download, basic_cleaning, data_check,
// data_split, train_random_forest, test_regression_model. Сами шаги —
// внешние компоненты; драйвер лишь строит словари параметров из
// конфигурации, резолвит источники и ждёт завершения каждого run.
//
// Файлы пакета:
//   - catalog.go — определения шести шагов и их параметров
//   - params.go  — рендеринг словарей параметров из конфигурации
//   - plan.go    — выбор и упорядочивание шагов по зависимостям
//   - driver.go  — последовательное fail-fast выполнение плана
package pipeline
